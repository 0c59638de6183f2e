// Package store provides the lifecycle's record stores: an in-memory
// implementation for tests and single-process use, a PostgreSQL
// implementation for production, and a Redis read-through cache for scored
// results.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/lifecycle/models"
	"corpcheck/internal/lifecycle/ports"
)

// MemoryPackageStore keeps package records in process memory. The mutex gives
// GetOrCreateLatest the same at-most-one-writer guarantee per hash the
// PostgreSQL store gets from its partial unique index.
type MemoryPackageStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*models.PackageRecord
	latestBy map[string]uuid.UUID
}

// NewMemoryPackageStore creates an empty in-memory package store.
func NewMemoryPackageStore() *MemoryPackageStore {
	return &MemoryPackageStore{
		records:  make(map[uuid.UUID]*models.PackageRecord),
		latestBy: make(map[string]uuid.UUID),
	}
}

func (s *MemoryPackageStore) GetOrCreateLatest(_ context.Context, candidate *models.PackageRecord) (*models.PackageRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.latestBy[candidate.Hash]; ok {
		return clonePackage(s.records[id]), false, nil
	}
	stored := clonePackage(candidate)
	s.records[stored.ID] = stored
	s.latestBy[stored.Hash] = stored.ID
	return clonePackage(stored), true, nil
}

func (s *MemoryPackageStore) FindByID(_ context.Context, id uuid.UUID) (*models.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return clonePackage(rec), nil
}

func (s *MemoryPackageStore) FindLatestByHash(_ context.Context, hash string) (*models.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.latestBy[hash]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return clonePackage(s.records[id]), nil
}

func (s *MemoryPackageStore) UpdateState(_ context.Context, id uuid.UUID, state models.State, meta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ports.ErrNotFound
	}
	rec.State = state
	if meta != nil {
		rec.Meta = cloneMeta(meta)
	}
	return nil
}

func (s *MemoryPackageStore) SaveData(_ context.Context, id uuid.UUID, data *models.PackageData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ports.ErrNotFound
	}
	rec.Data = data
	return nil
}

func (s *MemoryPackageStore) ClearLatest(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Hash == hash {
			rec.Latest = false
		}
	}
	delete(s.latestBy, hash)
	return nil
}

// MemoryEvaluationStore keeps evaluation records in process memory, keyed by
// (package, rule-set hash).
type MemoryEvaluationStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*models.EvaluationRecord
	byKey   map[evaluationKey]uuid.UUID
}

type evaluationKey struct {
	packageID   uuid.UUID
	ruleSetHash string
}

// NewMemoryEvaluationStore creates an empty in-memory evaluation store.
func NewMemoryEvaluationStore() *MemoryEvaluationStore {
	return &MemoryEvaluationStore{
		records: make(map[uuid.UUID]*models.EvaluationRecord),
		byKey:   make(map[evaluationKey]uuid.UUID),
	}
}

func (s *MemoryEvaluationStore) GetOrCreate(_ context.Context, candidate *models.EvaluationRecord) (*models.EvaluationRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := evaluationKey{packageID: candidate.PackageID, ruleSetHash: candidate.RuleSetHash}
	if id, ok := s.byKey[key]; ok {
		return cloneEvaluation(s.records[id]), false, nil
	}
	stored := cloneEvaluation(candidate)
	s.records[stored.ID] = stored
	s.byKey[key] = stored.ID
	return cloneEvaluation(stored), true, nil
}

func (s *MemoryEvaluationStore) SetResult(_ context.Context, id uuid.UUID, result *evalmodels.FinalEvaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ports.ErrNotFound
	}
	rec.Result = result
	return nil
}

func (s *MemoryEvaluationStore) ListByPackage(_ context.Context, packageID uuid.UUID) ([]*models.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.EvaluationRecord
	for _, rec := range s.records {
		if rec.PackageID == packageID {
			out = append(out, cloneEvaluation(rec))
		}
	}
	return out, nil
}

func clonePackage(rec *models.PackageRecord) *models.PackageRecord {
	if rec == nil {
		return nil
	}
	out := *rec
	out.Meta = cloneMeta(rec.Meta)
	return &out
}

func cloneEvaluation(rec *models.EvaluationRecord) *models.EvaluationRecord {
	if rec == nil {
		return nil
	}
	out := *rec
	return &out
}

func cloneMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
