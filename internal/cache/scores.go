package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/scoring"
)

// ScoreCache keeps valid risk scores in Redis so repeated reads within the
// validity window skip recomputation. Cache failures degrade to a recompute,
// never to an error for the caller.
type ScoreCache struct {
	client *redis.Client
	logger logger.Logger
}

// NewScoreCache creates a new risk score cache
func NewScoreCache(client *redis.Client, log logger.Logger) *ScoreCache {
	return &ScoreCache{client: client, logger: log}
}

func scoreKey(producerID uuid.UUID) string {
	return fmt.Sprintf("risk_score:%s", producerID)
}

// Get retrieves a cached score. Returns nil without error on a miss, on a
// stale entry, or when Redis is unreachable.
func (c *ScoreCache) Get(ctx context.Context, producerID uuid.UUID) *scoring.RiskScore {
	data, err := c.client.Get(ctx, scoreKey(producerID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("score cache read failed", "producer_id", producerID, "error", err)
		}
		return nil
	}

	var score scoring.RiskScore
	if err := json.Unmarshal(data, &score); err != nil {
		c.logger.Warn("score cache entry corrupt, dropping", "producer_id", producerID, "error", err)
		c.client.Del(ctx, scoreKey(producerID))
		return nil
	}

	if score.Expired(time.Now()) {
		return nil
	}
	return &score
}

// Set stores a score until its validity window closes. Already-expired scores
// are not cached.
func (c *ScoreCache) Set(ctx context.Context, score *scoring.RiskScore) {
	ttl := time.Until(score.ValidUntil)
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(score)
	if err != nil {
		c.logger.Warn("score cache marshal failed", "producer_id", score.ProducerID, "error", err)
		return
	}

	if err := c.client.Set(ctx, scoreKey(score.ProducerID), data, ttl).Err(); err != nil {
		c.logger.Warn("score cache write failed", "producer_id", score.ProducerID, "error", err)
	}
}

// Invalidate drops the cached score for a producer, called when the financial
// profile changes.
func (c *ScoreCache) Invalidate(ctx context.Context, producerID uuid.UUID) {
	if err := c.client.Del(ctx, scoreKey(producerID)).Err(); err != nil {
		c.logger.Warn("score cache invalidation failed", "producer_id", producerID, "error", err)
	}
}
