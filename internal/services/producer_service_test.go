package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

func producerForm() *repository.ProducerForm {
	return &repository.ProducerForm{
		Name:            "  Fazenda Santa Rita  ",
		Document:        "12345678000190",
		Email:           "rita@santarita.agr.br",
		State:           "go",
		City:            "Rio Verde",
		TotalAreaHa:     800,
		Crops:           []string{"soybean"},
		Insured:         true,
		YearsInActivity: 6,
	}
}

func TestCreateProducerNormalizesInput(t *testing.T) {
	repos := newTestRepos()
	svc := newProducerService(repos, newFakeScoreCache(), logger.NewNop())

	producer, err := svc.Create(producerForm())
	require.NoError(t, err)
	assert.Equal(t, "Fazenda Santa Rita", producer.Name)
	assert.Equal(t, "GO", producer.State)
}

func TestCreateProducerDuplicateDocument(t *testing.T) {
	repos := newTestRepos()
	svc := newProducerService(repos, newFakeScoreCache(), logger.NewNop())

	_, err := svc.Create(producerForm())
	require.NoError(t, err)

	_, err = svc.Create(producerForm())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestUpdateProfileInvalidatesCachedScore(t *testing.T) {
	pinClock(t, testClock)
	repos := newTestRepos()
	cache := newFakeScoreCache()
	svc := newProducerService(repos, cache, logger.NewNop())

	producerID := seedProducer(t, repos)
	cache.Set(context.Background(), &scoring.RiskScore{
		ProducerID: producerID,
		Score:      69,
		ValidUntil: testClock.AddDate(0, 0, 90),
	})

	_, err := svc.UpdateProfile(producerID.String(), &repository.FinancialProfileForm{
		AnnualRevenue:      f64(4_000_000),
		TotalDebt:          f64(500_000),
		MonthlyCashFlow:    []float64{1, 2, 3},
		GuaranteeValue:     f64(6_000_000),
		HasNegativeRecords: bPtr(false),
		CreditHistoryYears: iPtr(9),
	})
	require.NoError(t, err)
	assert.Nil(t, cache.Get(context.Background(), producerID), "profile change must drop the cached score")
}

func TestArchiveHidesProducerFromListing(t *testing.T) {
	repos := newTestRepos()
	svc := newProducerService(repos, newFakeScoreCache(), logger.NewNop())

	producer, err := svc.Create(producerForm())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(producer.ID.String()))

	visible, err := svc.GetAll(repository.ProducerFilters{})
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := svc.GetAll(repository.ProducerFilters{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestArchiveTwiceFails(t *testing.T) {
	repos := newTestRepos()
	svc := newProducerService(repos, newFakeScoreCache(), logger.NewNop())

	producer, err := svc.Create(producerForm())
	require.NoError(t, err)

	require.NoError(t, svc.Archive(producer.ID.String()))
	err = svc.Archive(producer.ID.String())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}
