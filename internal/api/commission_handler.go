package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/services"
)

// CommissionHandler handles marketplace commission management
type CommissionHandler struct {
	commissionService services.CommissionService
}

// NewCommissionHandler creates a new commission handler with service injection
func NewCommissionHandler(commissionService services.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

// List returns commissions matching the query filters
func (h *CommissionHandler) List(c *gin.Context) {
	filters, err := h.parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter parameters: " + err.Error()})
		return
	}

	commissions, err := h.commissionService.GetAll(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"commissions": commissions, "count": len(commissions)})
}

// Create computes and persists the commission for a contracted operation
func (h *CommissionHandler) Create(c *gin.Context) {
	record, err := h.commissionService.CreateForOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetByOperation returns the commission attached to an operation
func (h *CommissionHandler) GetByOperation(c *gin.Context) {
	record, err := h.commissionService.GetByOperation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// MarkPaid settles a pending commission
func (h *CommissionHandler) MarkPaid(c *gin.Context) {
	if err := h.commissionService.MarkPaid(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commission marked as paid"})
}

// parseFilters parses commission filter criteria from query parameters
func (h *CommissionHandler) parseFilters(c *gin.Context) (repository.CommissionFilters, error) {
	filters := repository.CommissionFilters{}

	if raw := c.Query("partner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return filters, err
		}
		filters.PartnerID = &parsed
	}
	if raw := c.Query("status"); raw != "" {
		filters.Status = strings.Split(raw, ",")
	}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filters, err
		}
		filters.From = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filters, err
		}
		filters.To = &parsed
	}
	filters.Limit, filters.Offset = parsePagination(c)

	return filters, nil
}
