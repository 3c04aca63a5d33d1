package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/services"
)

// matchTimeout bounds a single matching run, scoring included.
const matchTimeout = 30 * time.Second

// OperationHandler handles credit operations and their matching runs
type OperationHandler struct {
	operationService services.OperationService
	matchingService  services.MatchingService
}

// NewOperationHandler creates a new operation handler with service injection
func NewOperationHandler(operationService services.OperationService, matchingService services.MatchingService) *OperationHandler {
	return &OperationHandler{
		operationService: operationService,
		matchingService:  matchingService,
	}
}

// List returns credit operations matching the query filters
func (h *OperationHandler) List(c *gin.Context) {
	filters, err := h.parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter parameters: " + err.Error()})
		return
	}

	operations, err := h.operationService.GetAll(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"operations": operations, "count": len(operations)})
}

// Get returns a single credit operation
func (h *OperationHandler) Get(c *gin.Context) {
	op, err := h.operationService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// Create opens a draft credit operation for a producer
func (h *OperationHandler) Create(c *gin.Context) {
	var form repository.OperationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	op, err := h.operationService.Create(c.Param("id"), &form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// Submit moves a draft operation into the submitted state
func (h *OperationHandler) Submit(c *gin.Context) {
	op, err := h.operationService.Submit(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// Cancel aborts an operation that has not been funded yet
func (h *OperationHandler) Cancel(c *gin.Context) {
	op, err := h.operationService.Cancel(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// Contract records the producer's acceptance of a partner proposal
func (h *OperationHandler) Contract(c *gin.Context) {
	var form repository.ContractForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	op, err := h.operationService.Contract(c.Param("id"), &form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

// Match runs partner matching for an operation and returns the ranking
func (h *OperationHandler) Match(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), matchTimeout)
	defer cancel()

	response, err := h.matchingService.Match(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// MatchResults returns the stored ranking from the last matching run
func (h *OperationHandler) MatchResults(c *gin.Context) {
	results, err := h.matchingService.GetResults(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// parseFilters parses operation filter criteria from query parameters
func (h *OperationHandler) parseFilters(c *gin.Context) (repository.OperationFilters, error) {
	filters := repository.OperationFilters{
		State: strings.ToUpper(c.Query("state")),
	}

	if raw := c.Query("producer_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return filters, err
		}
		filters.ProducerID = &parsed
	}
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
	if raw := c.Query("type"); raw != "" {
		filters.Type = strings.Split(raw, ",")
	}
	if raw := c.Query("min_amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filters, err
		}
		filters.MinAmount = &parsed
	}
	if raw := c.Query("max_amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filters, err
		}
		filters.MaxAmount = &parsed
	}
	filters.Limit, filters.Offset = parsePagination(c)

	return filters, nil
}
