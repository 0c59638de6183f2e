package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/lifecycle/models"
	"corpcheck/internal/lifecycle/ports"
)

// CachedEvaluationStore is a Redis read-through decorator over an evaluation
// store. Only records that already carry a scored result are cached; cache
// failures are logged and fall through to the inner store, never breaking
// correctness.
type CachedEvaluationStore struct {
	inner  ports.EvaluationStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedEvaluationStore wraps inner with a Redis cache.
func NewCachedEvaluationStore(inner ports.EvaluationStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedEvaluationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEvaluationStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedEvaluationStore) GetOrCreate(ctx context.Context, candidate *models.EvaluationRecord) (*models.EvaluationRecord, bool, error) {
	key := cacheKey(candidate.PackageID, candidate.RuleSetHash)
	if cached, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var rec models.EvaluationRecord
		if err := json.Unmarshal(cached, &rec); err == nil {
			return &rec, false, nil
		}
		s.logger.WarnContext(ctx, "dropping undecodable cache entry", "key", key)
		_ = s.client.Del(ctx, key).Err()
	}

	rec, created, err := s.inner.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, false, err
	}
	if rec.Result != nil {
		s.cache(ctx, key, rec)
	}
	return rec, created, nil
}

func (s *CachedEvaluationStore) SetResult(ctx context.Context, id uuid.UUID, result *evalmodels.FinalEvaluation) error {
	return s.inner.SetResult(ctx, id, result)
}

func (s *CachedEvaluationStore) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]*models.EvaluationRecord, error) {
	return s.inner.ListByPackage(ctx, packageID)
}

func (s *CachedEvaluationStore) cache(ctx context.Context, key string, rec *models.EvaluationRecord) {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "evaluation cache write failed", "key", key, "error", err)
	}
}

func cacheKey(packageID uuid.UUID, ruleSetHash string) string {
	return fmt.Sprintf("evaluation:%s:%s", packageID, ruleSetHash)
}
