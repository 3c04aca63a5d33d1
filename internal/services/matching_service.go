package services

import (
	"context"
	"time"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/matching"
	"github.com/agrocredbr/agrocred-api/internal/metrics"
	"github.com/agrocredbr/agrocred-api/internal/models"
	"github.com/agrocredbr/agrocred-api/internal/repository"
)

// matchingServiceImpl implements MatchingService
type matchingServiceImpl struct {
	repos   *repository.Repositories
	scoring ScoringService
	engine  *matching.Engine
	logger  logger.Logger
}

// newMatchingService creates a new matching service implementation
func newMatchingService(repos *repository.Repositories, scoringService ScoringService, engine *matching.Engine, log logger.Logger) MatchingService {
	return &matchingServiceImpl{
		repos:   repos,
		scoring: scoringService,
		engine:  engine,
		logger:  log,
	}
}

// Match ranks every active partner against the operation using the producer's
// current risk score, replaces any previously stored ranking, and moves the
// operation into the matching state.
func (s *matchingServiceImpl) Match(ctx context.Context, operationID string) (*MatchResponse, error) {
	id, err := parseID(operationID)
	if err != nil {
		return nil, err
	}

	op, err := s.repos.Operation.GetByID(id)
	if err != nil {
		return nil, apperrors.NotFound("credit operation not found", err)
	}

	switch op.Status {
	case models.StatusSubmitted, models.StatusMatching:
	default:
		return nil, apperrors.Conflict("operation is not open for matching", nil).
			WithDetails("status " + string(op.Status))
	}

	riskScore, err := s.scoring.GetScore(ctx, op.ProducerID.String())
	if err != nil {
		return nil, err
	}

	criteria, err := s.repos.Partner.GetActiveCriteria()
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load partner criteria", err)
	}

	start := time.Now()
	results, skipped, err := s.engine.RankPartners(ctx, op, riskScore, criteria)
	if err != nil {
		return nil, err
	}
	metrics.MatchingDuration.Observe(time.Since(start).Seconds())
	metrics.MatchingRuns.Inc()
	metrics.PartnersRanked.Observe(float64(len(results)))
	for _, sk := range skipped {
		metrics.PartnersSkipped.WithLabelValues(string(sk.Reason)).Inc()
		s.logger.Warn("partner skipped during matching",
			"operation_id", id, "partner_id", sk.PartnerID,
			"reason", sk.Reason, "detail", sk.Detail)
	}

	if err := s.repos.Score.DeleteMatchResults(id); err != nil {
		return nil, apperrors.DatabaseError("failed to clear previous ranking", err)
	}
	if err := s.repos.Score.StoreMatchResults(results); err != nil {
		return nil, apperrors.DatabaseError("failed to store match results", err)
	}

	if op.Status != models.StatusMatching {
		op.Status = models.StatusMatching
		if err := s.repos.Operation.Update(op); err != nil {
			return nil, apperrors.DatabaseError("failed to update operation status", err)
		}
	}

	s.logger.Info("matching run finished",
		"operation_id", id, "ranked", len(results), "skipped", len(skipped))

	return &MatchResponse{OperationID: id, Results: results, Skipped: skipped}, nil
}

// GetResults retrieves the stored ranking for an operation
func (s *matchingServiceImpl) GetResults(operationID string) ([]matching.MatchResult, error) {
	id, err := parseID(operationID)
	if err != nil {
		return nil, err
	}

	results, err := s.repos.Score.GetMatchResults(id)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load match results", err)
	}
	return results, nil
}
