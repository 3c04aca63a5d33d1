package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/services"
)

// PartnerHandler handles financial partner management
type PartnerHandler struct {
	partnerService services.PartnerService
}

// NewPartnerHandler creates a new partner handler with service injection
func NewPartnerHandler(partnerService services.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// List returns partners matching the query filters
func (h *PartnerHandler) List(c *gin.Context) {
	filters := repository.PartnerFilters{
		Type:       c.Query("type"),
		State:      strings.ToUpper(c.Query("state")),
		ActiveOnly: c.Query("active") == "true",
	}
	filters.Limit, filters.Offset = parsePagination(c)

	partners, err := h.partnerService.GetAll(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"partners": partners, "count": len(partners)})
}

// Get returns a single partner
func (h *PartnerHandler) Get(c *gin.Context) {
	partner, err := h.partnerService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partner)
}

// Create registers a new financial partner
func (h *PartnerHandler) Create(c *gin.Context) {
	var form repository.PartnerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	partner, err := h.partnerService.Create(&form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, partner)
}

// Update modifies an existing partner
func (h *PartnerHandler) Update(c *gin.Context) {
	var form repository.PartnerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	partner, err := h.partnerService.Update(c.Param("id"), &form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, partner)
}

// Deactivate removes a partner from matching
func (h *PartnerHandler) Deactivate(c *gin.Context) {
	if err := h.partnerService.Deactivate(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Partner deactivated"})
}

// GetCriteria returns a partner's acceptance criteria
func (h *PartnerHandler) GetCriteria(c *gin.Context) {
	criteria, err := h.partnerService.GetCriteria(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, criteria)
}

// UpdateCriteria creates or replaces a partner's acceptance criteria
func (h *PartnerHandler) UpdateCriteria(c *gin.Context) {
	var form repository.PartnerCriteriaForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	criteria, err := h.partnerService.UpdateCriteria(c.Param("id"), &form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, criteria)
}
