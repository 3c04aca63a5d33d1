package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrocredbr/agrocred-api/internal/matching"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// ProducerRepository defines the interface for producer data access
type ProducerRepository interface {
	// Basic CRUD operations
	GetByID(id uuid.UUID) (*models.Producer, error)
	GetByDocument(document string) (*models.Producer, error)
	Create(producer *models.Producer) error
	Update(producer *models.Producer) error
	Archive(id uuid.UUID) error

	// Bulk operations
	GetAll(filters ProducerFilters) ([]models.Producer, error)

	// Financial profile operations
	GetProfile(producerID uuid.UUID) (*models.FinancialProfile, error)
	UpsertProfile(profile *models.FinancialProfile) error
}

// PartnerRepository defines the interface for partner data access
type PartnerRepository interface {
	GetByID(id uuid.UUID) (*models.Partner, error)
	Create(partner *models.Partner) error
	Update(partner *models.Partner) error
	Deactivate(id uuid.UUID) error
	GetAll(filters PartnerFilters) ([]models.Partner, error)

	// Acceptance criteria operations
	GetCriteria(partnerID uuid.UUID) (*models.PartnerCriteria, error)
	UpsertCriteria(criteria *models.PartnerCriteria) error
	GetActiveCriteria() ([]models.PartnerCriteria, error)
}

// OperationRepository defines the interface for credit operation data access
type OperationRepository interface {
	GetByID(id uuid.UUID) (*models.CreditOperation, error)
	Create(op *models.CreditOperation) error
	Update(op *models.CreditOperation) error
	GetAll(filters OperationFilters) ([]models.CreditOperation, error)
	GetByProducer(producerID uuid.UUID) ([]models.CreditOperation, error)
}

// ScoreRepository defines the interface for risk score, match result and
// commission data access
type ScoreRepository interface {
	// Risk score operations
	StoreScore(score *scoring.RiskScore) error
	GetLatestByProducer(producerID uuid.UUID) (*scoring.RiskScore, error)
	GetScoreHistory(producerID uuid.UUID, limit int) ([]scoring.RiskScore, error)
	GetProducersWithStaleScores(asOf time.Time, limit int) ([]uuid.UUID, error)

	// Match result operations
	StoreMatchResults(results []matching.MatchResult) error
	GetMatchResults(operationID uuid.UUID) ([]matching.MatchResult, error)
	DeleteMatchResults(operationID uuid.UUID) error

	// Commission operations
	CreateCommission(commission *models.Commission) error
	GetCommissionByOperation(operationID uuid.UUID) (*models.Commission, error)
	GetCommissions(filters CommissionFilters) ([]models.Commission, error)
	MarkCommissionPaid(id uuid.UUID, paidAt time.Time) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uuid.UUID) error
}

// TransactionManager defines the interface for database transaction management
type TransactionManager interface {
	WithTransaction(fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Producer  ProducerRepository
	Partner   PartnerRepository
	Operation OperationRepository
	Score     ScoreRepository
	User      UserRepository
	Tx        TransactionManager
}

// ProducerFilters defines filters for querying producers
type ProducerFilters struct {
	State           string
	Crop            string
	IncludeArchived bool
	Limit           int
	Offset          int
}

// PartnerFilters defines filters for querying partners
type PartnerFilters struct {
	Type       string
	State      string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// OperationFilters defines filters for querying credit operations
type OperationFilters struct {
	ProducerID *uuid.UUID
	PartnerID  *uuid.UUID
	Status     []string
	Type       []string
	State      string
	MinAmount  *float64
	MaxAmount  *float64
	Limit      int
	Offset     int
}

// CommissionFilters defines filters for querying commissions
type CommissionFilters struct {
	PartnerID *uuid.UUID
	Status    []string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
