package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
)

func TestUpdateCriteriaCarriesPartnerType(t *testing.T) {
	repos := newTestRepos()
	svc := newPartnerService(repos, logger.NewNop())

	partner, err := svc.Create(&repository.PartnerForm{
		Name:   "Coop Cerrado",
		Type:   "cooperative",
		State:  "go",
		Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "GO", partner.State)

	criteria, err := svc.UpdateCriteria(partner.ID.String(), &repository.PartnerCriteriaForm{
		MinTicket:      100_000,
		MaxTicket:      2_000_000,
		GuaranteeTypes: []string{"harvest"},
		Crops:          []string{"soybean"},
		States:         []string{"GO"},
		OperationTypes: []string{"working_capital"},
		MinScore:       50,
		MaxDebtRatio:   0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PartnerTypeCooperative, criteria.PartnerType)

	stored, err := svc.GetCriteria(partner.ID.String())
	require.NoError(t, err)
	assert.Equal(t, criteria.PartnerID, stored.PartnerID)
}

func TestUpdateCriteriaRejectsInvertedTicketBand(t *testing.T) {
	repos := newTestRepos()
	svc := newPartnerService(repos, logger.NewNop())

	partner, err := svc.Create(&repository.PartnerForm{
		Name: "Banco Campo", Type: "bank", State: "SP", Active: true,
	})
	require.NoError(t, err)

	_, err = svc.UpdateCriteria(partner.ID.String(), &repository.PartnerCriteriaForm{
		MinTicket: 2_000_000,
		MaxTicket: 100_000,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
}

func TestDeactivateUnknownPartner(t *testing.T) {
	repos := newTestRepos()
	svc := newPartnerService(repos, logger.NewNop())

	err := svc.Deactivate("9b9e7a58-0000-4000-8000-000000000000")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}
