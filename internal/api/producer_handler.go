package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/services"
)

// ProducerHandler handles producer registration and financial profiles
type ProducerHandler struct {
	producerService services.ProducerService
}

// NewProducerHandler creates a new producer handler with service injection
func NewProducerHandler(producerService services.ProducerService) *ProducerHandler {
	return &ProducerHandler{producerService: producerService}
}

// List returns producers matching the query filters
func (h *ProducerHandler) List(c *gin.Context) {
	filters := repository.ProducerFilters{
		State: strings.ToUpper(c.Query("state")),
		Crop:  c.Query("crop"),
	}
	filters.IncludeArchived = c.Query("include_archived") == "true"
	filters.Limit, filters.Offset = parsePagination(c)

	producers, err := h.producerService.GetAll(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"producers": producers, "count": len(producers)})
}

// Get returns a single producer
func (h *ProducerHandler) Get(c *gin.Context) {
	producer, err := h.producerService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, producer)
}

// Create registers a new producer
func (h *ProducerHandler) Create(c *gin.Context) {
	var form repository.ProducerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	producer, err := h.producerService.Create(&form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, producer)
}

// Update modifies an existing producer
func (h *ProducerHandler) Update(c *gin.Context) {
	var form repository.ProducerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	producer, err := h.producerService.Update(c.Param("id"), &form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, producer)
}

// Archive soft-deletes a producer
func (h *ProducerHandler) Archive(c *gin.Context) {
	if err := h.producerService.Archive(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producer archived"})
}

// GetProfile returns a producer's financial profile
func (h *ProducerHandler) GetProfile(c *gin.Context) {
	profile, err := h.producerService.GetProfile(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile creates or replaces a producer's financial profile
func (h *ProducerHandler) UpdateProfile(c *gin.Context) {
	var form repository.FinancialProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	profile, err := h.producerService.UpdateProfile(c.Param("id"), &form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// parsePagination reads limit/offset query parameters. Unparseable values
// fall back to the defaults.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
