package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
)

// producerServiceImpl implements ProducerService
type producerServiceImpl struct {
	repos  *repository.Repositories
	cache  scoreCacher
	logger logger.Logger
}

// newProducerService creates a new producer service implementation
func newProducerService(repos *repository.Repositories, cache scoreCacher, log logger.Logger) ProducerService {
	return &producerServiceImpl{repos: repos, cache: cache, logger: log}
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.InvalidInput("invalid id format", err)
	}
	return parsed, nil
}

// GetByID retrieves a producer
func (s *producerServiceImpl) GetByID(id string) (*models.Producer, error) {
	producerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	producer, err := s.repos.Producer.GetByID(producerID)
	if err != nil {
		return nil, apperrors.NotFound("producer not found", err)
	}
	return producer, nil
}

// GetAll retrieves producers with filters
func (s *producerServiceImpl) GetAll(filters repository.ProducerFilters) ([]models.Producer, error) {
	producers, err := s.repos.Producer.GetAll(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list producers", err)
	}
	return producers, nil
}

// Create registers a new producer
func (s *producerServiceImpl) Create(form *repository.ProducerForm) (*models.Producer, error) {
	document := strings.TrimSpace(form.Document)
	if existing, err := s.repos.Producer.GetByDocument(document); err == nil && existing != nil {
		return nil, apperrors.Conflict("producer with this document already exists", nil)
	}

	producer := &models.Producer{
		Name:            strings.TrimSpace(form.Name),
		Document:        document,
		Email:           strings.TrimSpace(form.Email),
		State:           strings.ToUpper(form.State),
		City:            form.City,
		TotalAreaHa:     form.TotalAreaHa,
		Crops:           models.StringList(form.Crops),
		Irrigated:       form.Irrigated,
		Insured:         form.Insured,
		YearsInActivity: form.YearsInActivity,
	}

	if err := s.repos.Producer.Create(producer); err != nil {
		return nil, apperrors.DatabaseError("failed to create producer", err)
	}

	s.logger.Info("producer created", "producer_id", producer.ID, "state", producer.State)
	return producer, nil
}

// Update modifies an existing producer. The document is immutable.
func (s *producerServiceImpl) Update(id string, form *repository.ProducerForm) (*models.Producer, error) {
	producerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	producer, err := s.repos.Producer.GetByID(producerID)
	if err != nil {
		return nil, apperrors.NotFound("producer not found", err)
	}

	producer.Name = strings.TrimSpace(form.Name)
	producer.Email = strings.TrimSpace(form.Email)
	producer.State = strings.ToUpper(form.State)
	producer.City = form.City
	producer.TotalAreaHa = form.TotalAreaHa
	producer.Crops = models.StringList(form.Crops)
	producer.Irrigated = form.Irrigated
	producer.Insured = form.Insured
	producer.YearsInActivity = form.YearsInActivity

	if err := s.repos.Producer.Update(producer); err != nil {
		return nil, apperrors.DatabaseError("failed to update producer", err)
	}

	// Agronomic attributes feed the risk score, so a cached one is stale now
	s.cache.Invalidate(context.Background(), producerID)

	return producer, nil
}

// Archive soft-deletes a producer
func (s *producerServiceImpl) Archive(id string) error {
	producerID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := s.repos.Producer.Archive(producerID); err != nil {
		return apperrors.NotFound("producer not found", err)
	}

	s.cache.Invalidate(context.Background(), producerID)
	s.logger.Info("producer archived", "producer_id", producerID)
	return nil
}

// GetProfile retrieves a producer's financial profile
func (s *producerServiceImpl) GetProfile(producerID string) (*models.FinancialProfile, error) {
	id, err := parseID(producerID)
	if err != nil {
		return nil, err
	}

	profile, err := s.repos.Producer.GetProfile(id)
	if err != nil {
		return nil, apperrors.NotFound("financial profile not found", err)
	}
	return profile, nil
}

// UpdateProfile creates or replaces a producer's financial profile and drops
// any cached score
func (s *producerServiceImpl) UpdateProfile(producerID string, form *repository.FinancialProfileForm) (*models.FinancialProfile, error) {
	id, err := parseID(producerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Producer.GetByID(id); err != nil {
		return nil, apperrors.NotFound("producer not found", err)
	}

	profile := &models.FinancialProfile{
		ProducerID:         id,
		AnnualRevenue:      form.AnnualRevenue,
		TotalDebt:          form.TotalDebt,
		MonthlyCashFlow:    models.CashFlow(form.MonthlyCashFlow),
		GuaranteeValue:     form.GuaranteeValue,
		HasNegativeRecords: form.HasNegativeRecords,
		CreditHistoryYears: form.CreditHistoryYears,
	}

	if err := s.repos.Producer.UpsertProfile(profile); err != nil {
		return nil, apperrors.DatabaseError("failed to save financial profile", err)
	}

	s.cache.Invalidate(context.Background(), id)
	s.logger.Info("financial profile updated", "producer_id", id)

	return profile, nil
}
