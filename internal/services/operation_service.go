package services

import (
	"strings"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
)

// operationServiceImpl implements OperationService
type operationServiceImpl struct {
	repos  *repository.Repositories
	logger logger.Logger
}

// newOperationService creates a new credit operation service implementation
func newOperationService(repos *repository.Repositories, log logger.Logger) OperationService {
	return &operationServiceImpl{repos: repos, logger: log}
}

// GetByID retrieves a credit operation
func (s *operationServiceImpl) GetByID(id string) (*models.CreditOperation, error) {
	operationID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	op, err := s.repos.Operation.GetByID(operationID)
	if err != nil {
		return nil, apperrors.NotFound("credit operation not found", err)
	}
	return op, nil
}

// GetAll retrieves credit operations with filters
func (s *operationServiceImpl) GetAll(filters repository.OperationFilters) ([]models.CreditOperation, error) {
	operations, err := s.repos.Operation.GetAll(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list credit operations", err)
	}
	return operations, nil
}

// Create opens a draft credit operation for a producer
func (s *operationServiceImpl) Create(producerID string, form *repository.OperationForm) (*models.CreditOperation, error) {
	id, err := parseID(producerID)
	if err != nil {
		return nil, err
	}

	producer, err := s.repos.Producer.GetByID(id)
	if err != nil {
		return nil, apperrors.NotFound("producer not found", err)
	}
	if producer.ArchivedAt != nil {
		return nil, apperrors.InvalidInput("archived producers cannot open operations", nil)
	}

	op := &models.CreditOperation{
		ProducerID:     id,
		Amount:         form.Amount,
		TermMonths:     form.TermMonths,
		Type:           models.OperationType(form.Type),
		Crop:           form.Crop,
		State:          strings.ToUpper(form.State),
		GuaranteeTypes: models.StringList(form.GuaranteeTypes),
		Status:         models.StatusDraft,
	}

	if err := s.repos.Operation.Create(op); err != nil {
		return nil, apperrors.DatabaseError("failed to create credit operation", err)
	}

	s.logger.Info("credit operation created",
		"operation_id", op.ID, "producer_id", id, "amount", op.Amount)
	return op, nil
}

// Submit moves a draft operation into the submitted state, making it
// available for matching
func (s *operationServiceImpl) Submit(id string) (*models.CreditOperation, error) {
	return s.transition(id, models.StatusSubmitted, map[models.OperationStatus]bool{
		models.StatusDraft: true,
	})
}

// Cancel aborts an operation that has not been funded yet
func (s *operationServiceImpl) Cancel(id string) (*models.CreditOperation, error) {
	return s.transition(id, models.StatusCancelled, map[models.OperationStatus]bool{
		models.StatusDraft:      true,
		models.StatusSubmitted:  true,
		models.StatusMatching:   true,
		models.StatusProposal:   true,
		models.StatusContracted: true,
	})
}

func (s *operationServiceImpl) transition(id string, to models.OperationStatus, allowedFrom map[models.OperationStatus]bool) (*models.CreditOperation, error) {
	operationID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	op, err := s.repos.Operation.GetByID(operationID)
	if err != nil {
		return nil, apperrors.NotFound("credit operation not found", err)
	}

	if !allowedFrom[op.Status] {
		return nil, apperrors.Conflict("invalid status transition", nil).
			WithDetails(string(op.Status) + " -> " + string(to))
	}

	op.Status = to
	if err := s.repos.Operation.Update(op); err != nil {
		return nil, apperrors.DatabaseError("failed to update credit operation", err)
	}

	s.logger.Info("operation status changed", "operation_id", op.ID, "status", op.Status)
	return op, nil
}

// Contract records the producer's acceptance of a partner proposal. The
// operation must have been through matching and the chosen partner must
// appear in the stored ranking.
func (s *operationServiceImpl) Contract(id string, form *repository.ContractForm) (*models.CreditOperation, error) {
	operationID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	partnerID, err := parseID(form.PartnerID)
	if err != nil {
		return nil, err
	}

	op, err := s.repos.Operation.GetByID(operationID)
	if err != nil {
		return nil, apperrors.NotFound("credit operation not found", err)
	}

	if op.Status != models.StatusMatching && op.Status != models.StatusProposal {
		return nil, apperrors.Conflict("operation is not open for contracting", nil).
			WithDetails("status " + string(op.Status))
	}

	results, err := s.repos.Score.GetMatchResults(operationID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load match results", err)
	}
	matched := false
	for _, r := range results {
		if r.PartnerID == partnerID {
			matched = true
			break
		}
	}
	if !matched {
		return nil, apperrors.InvalidInput("partner was not ranked for this operation", nil)
	}

	op.Status = models.StatusContracted
	op.PartnerID = &partnerID
	op.ContractedAmount = &form.ContractedAmount
	op.ContractedRate = form.ContractedRate

	if err := s.repos.Operation.Update(op); err != nil {
		return nil, apperrors.DatabaseError("failed to contract operation", err)
	}

	s.logger.Info("operation contracted",
		"operation_id", op.ID, "partner_id", partnerID, "amount", form.ContractedAmount)
	return op, nil
}
