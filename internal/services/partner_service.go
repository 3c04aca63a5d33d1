package services

import (
	"strings"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
)

// partnerServiceImpl implements PartnerService
type partnerServiceImpl struct {
	repos  *repository.Repositories
	logger logger.Logger
}

// newPartnerService creates a new partner service implementation
func newPartnerService(repos *repository.Repositories, log logger.Logger) PartnerService {
	return &partnerServiceImpl{repos: repos, logger: log}
}

// GetByID retrieves a partner
func (s *partnerServiceImpl) GetByID(id string) (*models.Partner, error) {
	partnerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	partner, err := s.repos.Partner.GetByID(partnerID)
	if err != nil {
		return nil, apperrors.NotFound("partner not found", err)
	}
	return partner, nil
}

// GetAll retrieves partners with filters
func (s *partnerServiceImpl) GetAll(filters repository.PartnerFilters) ([]models.Partner, error) {
	partners, err := s.repos.Partner.GetAll(filters)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list partners", err)
	}
	return partners, nil
}

// Create registers a new financial partner
func (s *partnerServiceImpl) Create(form *repository.PartnerForm) (*models.Partner, error) {
	partner := &models.Partner{
		Name:   strings.TrimSpace(form.Name),
		Type:   models.PartnerType(form.Type),
		State:  strings.ToUpper(form.State),
		Active: form.Active,
	}

	if err := s.repos.Partner.Create(partner); err != nil {
		return nil, apperrors.DatabaseError("failed to create partner", err)
	}

	s.logger.Info("partner created", "partner_id", partner.ID, "type", partner.Type)
	return partner, nil
}

// Update modifies an existing partner
func (s *partnerServiceImpl) Update(id string, form *repository.PartnerForm) (*models.Partner, error) {
	partnerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	partner, err := s.repos.Partner.GetByID(partnerID)
	if err != nil {
		return nil, apperrors.NotFound("partner not found", err)
	}

	partner.Name = strings.TrimSpace(form.Name)
	partner.Type = models.PartnerType(form.Type)
	partner.State = strings.ToUpper(form.State)
	partner.Active = form.Active

	if err := s.repos.Partner.Update(partner); err != nil {
		return nil, apperrors.DatabaseError("failed to update partner", err)
	}

	return partner, nil
}

// Deactivate removes a partner from matching
func (s *partnerServiceImpl) Deactivate(id string) error {
	partnerID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := s.repos.Partner.Deactivate(partnerID); err != nil {
		return apperrors.NotFound("partner not found", err)
	}

	s.logger.Info("partner deactivated", "partner_id", partnerID)
	return nil
}

// GetCriteria retrieves a partner's acceptance criteria
func (s *partnerServiceImpl) GetCriteria(partnerID string) (*models.PartnerCriteria, error) {
	id, err := parseID(partnerID)
	if err != nil {
		return nil, err
	}

	criteria, err := s.repos.Partner.GetCriteria(id)
	if err != nil {
		return nil, apperrors.NotFound("partner criteria not found", err)
	}
	return criteria, nil
}

// UpdateCriteria creates or replaces a partner's acceptance criteria
func (s *partnerServiceImpl) UpdateCriteria(partnerID string, form *repository.PartnerCriteriaForm) (*models.PartnerCriteria, error) {
	id, err := parseID(partnerID)
	if err != nil {
		return nil, err
	}

	partner, err := s.repos.Partner.GetByID(id)
	if err != nil {
		return nil, apperrors.NotFound("partner not found", err)
	}

	if form.MaxTicket < form.MinTicket {
		return nil, apperrors.InvalidInput("max_ticket must not be below min_ticket", nil)
	}

	criteria := &models.PartnerCriteria{
		PartnerID:      id,
		PartnerType:    partner.Type,
		MinTicket:      form.MinTicket,
		MaxTicket:      form.MaxTicket,
		GuaranteeTypes: models.StringList(form.GuaranteeTypes),
		Crops:          models.StringList(form.Crops),
		States:         models.StringList(form.States),
		OperationTypes: models.StringList(form.OperationTypes),
		MinScore:       form.MinScore,
		MaxDebtRatio:   form.MaxDebtRatio,
	}

	if err := s.repos.Partner.UpsertCriteria(criteria); err != nil {
		return nil, apperrors.DatabaseError("failed to save partner criteria", err)
	}

	s.logger.Info("partner criteria updated", "partner_id", id)
	return criteria, nil
}
