package services

import (
	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/commission"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/metrics"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// commissionServiceImpl implements CommissionService
type commissionServiceImpl struct {
	repos  *repository.Repositories
	logger logger.Logger
}

// newCommissionService creates a new commission service implementation
func newCommissionService(repos *repository.Repositories, log logger.Logger) CommissionService {
	return &commissionServiceImpl{repos: repos, logger: log}
}

// CreateForOperation computes and persists the commission on a contracted
// operation. The tier comes from the producer's declared annual revenue and
// the rate from the operation's contracted rate, clamped into the tier band.
func (s *commissionServiceImpl) CreateForOperation(operationID string) (*models.Commission, error) {
	id, err := parseID(operationID)
	if err != nil {
		return nil, err
	}

	op, err := s.repos.Operation.GetByID(id)
	if err != nil {
		return nil, apperrors.NotFound("credit operation not found", err)
	}
	if op.Status != models.StatusContracted && op.Status != models.StatusFunded && op.Status != models.StatusSettled {
		return nil, apperrors.Conflict("operation has not been contracted", nil).
			WithDetails("status " + string(op.Status))
	}
	if op.PartnerID == nil || op.ContractedAmount == nil {
		return nil, apperrors.InvalidInput("operation is missing contract details", nil)
	}

	if existing, err := s.repos.Score.GetCommissionByOperation(id); err == nil && existing != nil {
		return nil, apperrors.Conflict("commission already exists for this operation", nil)
	}

	profile, err := s.repos.Producer.GetProfile(op.ProducerID)
	if err != nil {
		return nil, apperrors.IncompleteProfile("producer has no financial profile", err)
	}
	if profile.AnnualRevenue == nil {
		return nil, apperrors.IncompleteProfile("annual revenue is absent", nil)
	}

	tier, err := scoring.ClassifyTier(*profile.AnnualRevenue)
	if err != nil {
		return nil, err
	}

	breakdown, err := commission.Calculate(tier, *op.ContractedAmount, op.ContractedRate)
	if err != nil {
		return nil, err
	}

	record := &models.Commission{
		OperationID:      id,
		PartnerID:        *op.PartnerID,
		ContractedAmount: breakdown.ContractedAmount,
		Rate:             breakdown.Rate,
		Value:            breakdown.Value,
		FixedFee:         breakdown.FixedFee,
		Total:            breakdown.Total,
		Status:           models.PaymentPending,
	}

	if err := s.repos.Score.CreateCommission(record); err != nil {
		return nil, apperrors.DatabaseError("failed to create commission", err)
	}
	metrics.CommissionsCreated.WithLabelValues(string(tier)).Inc()

	s.logger.Info("commission created",
		"operation_id", id, "tier", tier, "rate", record.Rate, "total", record.Total)
	return record, nil
}

// GetByOperation retrieves the commission for an operation
func (s *commissionServiceImpl) GetByOperation(operationID string) (*models.Commission, error) {
	id, err := parseID(operationID)
	if err != nil {
		return nil, err
	}

	record, err := s.repos.Score.GetCommissionByOperation(id)
	if err != nil {
		return nil, apperrors.NotFound("commission not found", err)
	}
	return record, nil
}

// GetAll retrieves commissions with filters
func (s *commissionServiceImpl) GetAll(filters repository.CommissionFilters) ([]models.Commission, error) {
	commissions, err := s.repos.Score.GetCommissions(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list commissions", err)
	}
	return commissions, nil
}

// MarkPaid settles a pending commission
func (s *commissionServiceImpl) MarkPaid(id string) error {
	commissionID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := s.repos.Score.MarkCommissionPaid(commissionID, nowFunc()); err != nil {
		return apperrors.Conflict("commission not found or not pending", err)
	}

	s.logger.Info("commission paid", "commission_id", commissionID)
	return nil
}
