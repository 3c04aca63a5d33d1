package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/agrocredbr/agrocred-api/internal/errors"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/metrics"
	"github.com/agrocredbr/agrocred-api/internal/repository"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// scoreCacher is the slice of cache.ScoreCache the scoring service needs,
// narrowed so tests can supply a fake.
type scoreCacher interface {
	Get(ctx context.Context, producerID uuid.UUID) *scoring.RiskScore
	Set(ctx context.Context, score *scoring.RiskScore)
	Invalidate(ctx context.Context, producerID uuid.UUID)
}

// scoringServiceImpl implements ScoringService
type scoringServiceImpl struct {
	repos  *repository.Repositories
	engine *scoring.Engine
	cache  scoreCacher
	logger logger.Logger
}

// newScoringService creates a new scoring service implementation
func newScoringService(repos *repository.Repositories, cache scoreCacher, log logger.Logger) ScoringService {
	return &scoringServiceImpl{
		repos:  repos,
		engine: scoring.NewEngine(),
		cache:  cache,
		logger: log,
	}
}

// GetScore returns the producer's current risk score: cached if valid, else
// the latest stored score if still valid, else a fresh computation.
func (s *scoringServiceImpl) GetScore(ctx context.Context, producerID string) (*scoring.RiskScore, error) {
	id, err := parseID(producerID)
	if err != nil {
		return nil, err
	}

	if cached := s.cache.Get(ctx, id); cached != nil {
		metrics.ScoreCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ScoreCacheHits.WithLabelValues("miss").Inc()

	if stored, err := s.repos.Score.GetLatestByProducer(id); err == nil && !stored.Expired(nowFunc()) {
		s.cache.Set(ctx, stored)
		return stored, nil
	}

	return s.compute(ctx, id)
}

// Recompute forces a fresh score regardless of validity
func (s *scoringServiceImpl) Recompute(ctx context.Context, producerID string) (*scoring.RiskScore, error) {
	id, err := parseID(producerID)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, id)
}

func (s *scoringServiceImpl) compute(ctx context.Context, producerID uuid.UUID) (*scoring.RiskScore, error) {
	producer, err := s.repos.Producer.GetByID(producerID)
	if err != nil {
		return nil, apperrors.NotFound("producer not found", err)
	}

	profile, err := s.repos.Producer.GetProfile(producerID)
	if err != nil {
		return nil, apperrors.IncompleteProfile("producer has no financial profile", err)
	}

	start := time.Now()
	score, err := s.engine.ComputeRiskScore(profile, producer, nowFunc())
	if err != nil {
		return nil, err
	}
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	metrics.ScoresComputed.WithLabelValues(string(score.Profile), string(score.Tier)).Inc()

	if err := s.repos.Score.StoreScore(score); err != nil {
		return nil, apperrors.DatabaseError("failed to store risk score", err)
	}
	s.cache.Set(ctx, score)

	s.logger.Info("risk score computed",
		"producer_id", producerID, "score", score.Score,
		"profile", score.Profile, "tier", score.Tier)
	return score, nil
}

// GetHistory retrieves a producer's scoring history
func (s *scoringServiceImpl) GetHistory(producerID string, limit int) ([]scoring.RiskScore, error) {
	id, err := parseID(producerID)
	if err != nil {
		return nil, err
	}

	scores, err := s.repos.Score.GetScoreHistory(id, limit)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load score history", err)
	}
	return scores, nil
}

// RescoreStale recomputes every producer whose latest score is expired or
// missing. Producers without a complete profile are skipped, not fatal.
func (s *scoringServiceImpl) RescoreStale(ctx context.Context, limit int) (int, error) {
	ids, err := s.repos.Score.GetProducersWithStaleScores(nowFunc(), limit)
	if err != nil {
		return 0, apperrors.DatabaseError("failed to find stale producers", err)
	}

	rescored := 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return rescored, ctx.Err()
		default:
		}

		if _, err := s.compute(ctx, id); err != nil {
			s.logger.Warn("rescore skipped", "producer_id", id, "reason", err.Error())
			continue
		}
		rescored++
	}

	s.logger.Info("rescore cycle finished", "candidates", len(ids), "rescored", rescored)
	return rescored, nil
}
