package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agrocredbr/agrocred-api/internal/cache"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/matching"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
	"github.com/agrocredbr/agrocred-api/pkg/config"
)

// Services contains all application services
type Services struct {
	Producer   ProducerService
	Partner    PartnerService
	Operation  OperationService
	Scoring    ScoringService
	Matching   MatchingService
	Commission CommissionService
	Auth       AuthService
}

// ProducerService defines the interface for producer business logic
type ProducerService interface {
	GetByID(id string) (*models.Producer, error)
	GetAll(filters repository.ProducerFilters) ([]models.Producer, error)
	Create(form *repository.ProducerForm) (*models.Producer, error)
	Update(id string, form *repository.ProducerForm) (*models.Producer, error)
	Archive(id string) error
	GetProfile(producerID string) (*models.FinancialProfile, error)
	UpdateProfile(producerID string, form *repository.FinancialProfileForm) (*models.FinancialProfile, error)
}

// PartnerService defines the interface for partner business logic
type PartnerService interface {
	GetByID(id string) (*models.Partner, error)
	GetAll(filters repository.PartnerFilters) ([]models.Partner, error)
	Create(form *repository.PartnerForm) (*models.Partner, error)
	Update(id string, form *repository.PartnerForm) (*models.Partner, error)
	Deactivate(id string) error
	GetCriteria(partnerID string) (*models.PartnerCriteria, error)
	UpdateCriteria(partnerID string, form *repository.PartnerCriteriaForm) (*models.PartnerCriteria, error)
}

// OperationService defines the interface for credit operation business logic
type OperationService interface {
	GetByID(id string) (*models.CreditOperation, error)
	GetAll(filters repository.OperationFilters) ([]models.CreditOperation, error)
	Create(producerID string, form *repository.OperationForm) (*models.CreditOperation, error)
	Submit(id string) (*models.CreditOperation, error)
	Cancel(id string) (*models.CreditOperation, error)
	Contract(id string, form *repository.ContractForm) (*models.CreditOperation, error)
}

// ScoringService defines the interface for risk scoring business logic
type ScoringService interface {
	// GetScore returns the producer's current risk score, computing a fresh
	// one when none is valid.
	GetScore(ctx context.Context, producerID string) (*scoring.RiskScore, error)
	// Recompute forces a fresh score regardless of validity.
	Recompute(ctx context.Context, producerID string) (*scoring.RiskScore, error)
	GetHistory(producerID string, limit int) ([]scoring.RiskScore, error)
	// RescoreStale recomputes every producer whose score is expired or
	// missing. Returns the number of producers rescored.
	RescoreStale(ctx context.Context, limit int) (int, error)
}

// MatchResponse bundles a matching run's ranking with its warnings
type MatchResponse struct {
	OperationID uuid.UUID                 `json:"operation_id"`
	Results     []matching.MatchResult    `json:"results"`
	Skipped     []matching.SkippedPartner `json:"skipped,omitempty"`
}

// MatchingService defines the interface for partner matching business logic
type MatchingService interface {
	// Match ranks all active partners for an operation and persists the run.
	Match(ctx context.Context, operationID string) (*MatchResponse, error)
	GetResults(operationID string) ([]matching.MatchResult, error)
}

// CommissionService defines the interface for commission business logic
type CommissionService interface {
	// CreateForOperation computes and persists the commission on a
	// contracted operation.
	CreateForOperation(operationID string) (*models.Commission, error)
	GetByOperation(operationID string) (*models.Commission, error)
	GetAll(filters repository.CommissionFilters) ([]models.Commission, error)
	MarkPaid(id string) error
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(email, password string) (*repository.LoginResponse, error)
	Register(req *repository.RegisterRequest) (*models.User, error)
	ValidateToken(token string) (*models.User, error)
	RefreshToken(token string) (*repository.LoginResponse, error)
}

// NewServices creates a new Services instance with all dependencies
func NewServices(db *sql.DB, rdb *redis.Client, cfg *config.Config, log logger.Logger) *Services {
	repos := repository.NewRepositories(db)
	scoreCache := cache.NewScoreCache(rdb, log)

	scoringService := newScoringService(repos, scoreCache, log)

	return &Services{
		Producer:   newProducerService(repos, scoreCache, log),
		Partner:    newPartnerService(repos, log),
		Operation:  newOperationService(repos, log),
		Scoring:    scoringService,
		Matching:   newMatchingService(repos, scoringService, matching.NewEngine(cfg.MatchWorkers), log),
		Commission: newCommissionService(repos, log),
		Auth:       newAuthService(repos, cfg),
	}
}

// nowFunc is swapped in tests to pin the clock
var nowFunc = time.Now
