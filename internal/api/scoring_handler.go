package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrocredbr/agrocred-api/internal/services"
)

// scoringTimeout bounds a single scoring computation.
const scoringTimeout = 10 * time.Second

// ScoringHandler handles producer risk scoring
type ScoringHandler struct {
	scoringService services.ScoringService
}

// NewScoringHandler creates a new scoring handler with service injection
func NewScoringHandler(scoringService services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoringService: scoringService}
}

// GetScore returns the producer's current risk score, computing one when no
// valid score exists
func (h *ScoringHandler) GetScore(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), scoringTimeout)
	defer cancel()

	score, err := h.scoringService.GetScore(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// Recompute forces a fresh risk score regardless of validity
func (h *ScoringHandler) Recompute(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), scoringTimeout)
	defer cancel()

	score, err := h.scoringService.Recompute(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// GetHistory returns a producer's past scoring runs, newest first
func (h *ScoringHandler) GetHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	history, err := h.scoringService.GetHistory(c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": history, "count": len(history)})
}
