package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrocredbr/agrocred-api/internal/auth"
	"github.com/agrocredbr/agrocred-api/internal/database"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/services"
	"github.com/agrocredbr/agrocred-api/pkg/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, svcs *services.Services, db *database.DB, rdb *database.RedisClient, cfg *config.Config) {
	authHandler := NewAuthHandler(svcs.Auth)
	producerHandler := NewProducerHandler(svcs.Producer)
	partnerHandler := NewPartnerHandler(svcs.Partner)
	operationHandler := NewOperationHandler(svcs.Operation, svcs.Matching)
	scoringHandler := NewScoringHandler(svcs.Scoring)
	commissionHandler := NewCommissionHandler(svcs.Commission)

	r.GET("/health", healthHandler(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/refresh", authHandler.RefreshToken)
		public.POST("/auth/logout", authHandler.Logout)
	}

	protected := r.Group("/api/v1")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	{
		// Producer endpoints
		protected.GET("/producers", producerHandler.List)
		protected.POST("/producers", producerHandler.Create)
		protected.GET("/producers/:id", producerHandler.Get)
		protected.PUT("/producers/:id", producerHandler.Update)
		protected.DELETE("/producers/:id", producerHandler.Archive)
		protected.GET("/producers/:id/profile", producerHandler.GetProfile)
		protected.PUT("/producers/:id/profile", producerHandler.UpdateProfile)

		// Scoring endpoints
		protected.GET("/producers/:id/score", scoringHandler.GetScore)
		protected.POST("/producers/:id/score", scoringHandler.Recompute)
		protected.GET("/producers/:id/score/history", scoringHandler.GetHistory)

		// Partner endpoints
		protected.GET("/partners", partnerHandler.List)
		protected.POST("/partners", partnerHandler.Create)
		protected.GET("/partners/:id", partnerHandler.Get)
		protected.PUT("/partners/:id", partnerHandler.Update)
		protected.DELETE("/partners/:id", partnerHandler.Deactivate)
		protected.GET("/partners/:id/criteria", partnerHandler.GetCriteria)
		protected.PUT("/partners/:id/criteria", partnerHandler.UpdateCriteria)

		// Credit operation endpoints
		protected.GET("/operations", operationHandler.List)
		protected.POST("/producers/:id/operations", operationHandler.Create)
		protected.GET("/operations/:id", operationHandler.Get)
		protected.POST("/operations/:id/submit", operationHandler.Submit)
		protected.POST("/operations/:id/cancel", operationHandler.Cancel)
		protected.POST("/operations/:id/contract", operationHandler.Contract)

		// Matching endpoints
		protected.POST("/operations/:id/match", operationHandler.Match)
		protected.GET("/operations/:id/match", operationHandler.MatchResults)

		// Commission endpoints
		protected.GET("/commissions", commissionHandler.List)
		protected.POST("/operations/:id/commission", commissionHandler.Create)
		protected.GET("/operations/:id/commission", commissionHandler.GetByOperation)
		protected.POST("/commissions/:id/paid",
			auth.RequireRole(string(models.RoleAdmin), string(models.RoleAnalyst)),
			commissionHandler.MarkPaid)
	}
}

// healthHandler reports liveness of the API and its backing stores. Redis
// being down degrades the report but not the status code, since the read path
// works without the score cache.
func healthHandler(db *database.DB, rdb *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := db.HealthCheck(); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
		}

		c.JSON(status, gin.H{
			"status": http.StatusText(status),
			"checks": checks,
			"stats":  db.GetStats(),
		})
	}
}
