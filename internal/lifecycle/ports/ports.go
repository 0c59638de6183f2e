// Package ports defines the storage and transport interfaces the lifecycle
// service depends on. Implementations live under lifecycle/store and
// internal/queue; the service never talks to a driver directly.
package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/lifecycle/models"
)

// ErrNotFound is returned by stores when no record matches the lookup key.
var ErrNotFound = errors.New("record not found")

// PackageStore persists content-addressed package records.
type PackageStore interface {
	// GetOrCreateLatest atomically returns the latest record for the
	// candidate's hash, inserting the candidate when none exists. Two
	// concurrent calls for the same hash must yield exactly one created
	// record; created reports which caller won.
	GetOrCreateLatest(ctx context.Context, candidate *models.PackageRecord) (rec *models.PackageRecord, created bool, err error)

	// FindByID returns the record with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*models.PackageRecord, error)

	// FindLatestByHash returns the latest=true record for a hash, or
	// ErrNotFound.
	FindLatestByHash(ctx context.Context, hash string) (*models.PackageRecord, error)

	// UpdateState replaces the record's state and auxiliary meta.
	UpdateState(ctx context.Context, id uuid.UUID, state models.State, meta map[string]any) error

	// SaveData stores the tree builder's payload on the record.
	SaveData(ctx context.Context, id uuid.UUID, data *models.PackageData) error

	// ClearLatest flips latest to false for all records sharing the hash,
	// making room for a fresh record.
	ClearLatest(ctx context.Context, hash string) error
}

// EvaluationStore persists scored results keyed by (package, rule-set hash).
type EvaluationStore interface {
	// GetOrCreate atomically returns the record for the candidate's
	// (PackageID, RuleSetHash) pair, inserting the candidate when none
	// exists.
	GetOrCreate(ctx context.Context, candidate *models.EvaluationRecord) (rec *models.EvaluationRecord, created bool, err error)

	// SetResult fills in the scored result for a record.
	SetResult(ctx context.Context, id uuid.UUID, result *evalmodels.FinalEvaluation) error

	// ListByPackage returns all evaluation records of a package.
	ListByPackage(ctx context.Context, packageID uuid.UUID) ([]*models.EvaluationRecord, error)
}

// TaskQueue hands tree-building work off to the external worker. Enqueue is
// fire-and-forget; the worker reports back through the completion callback.
type TaskQueue interface {
	Enqueue(ctx context.Context, task models.Task) error
}
