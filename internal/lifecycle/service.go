// Package lifecycle owns the package-record state machine, content-addressed
// dedup, TTL-based expiration, and the (package, rule-set)-keyed evaluation
// cache. All durable-state mutation is delegated to the stores' atomic
// primitives; the service itself keeps no mutable state and is safe across
// independent stateless invocations.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/evaluation/rules"
	"corpcheck/internal/lifecycle/metrics"
	"corpcheck/internal/lifecycle/models"
	"corpcheck/internal/lifecycle/ports"
	"corpcheck/pkg/requestcontext"
)

// Scorer computes a scored tree from the builder payload and a resolved rule
// set. Satisfied by evaluation.Scorer.
type Scorer interface {
	Score(tree *evalmodels.DependencyNode, meta map[string]evalmodels.PackageMeta, ruleSet rules.RuleSet, unknownPackages []string) (*evalmodels.FinalEvaluation, error)
}

// Config carries the staleness windows of the state machine.
type Config struct {
	// PendingMaxAge is how long a PENDING record may wait for the worker
	// before a read lazily fails it with "timeout".
	PendingMaxAge time.Duration

	// SuccessMaxAge is how long a SUCCEEDED record stays fresh.
	SuccessMaxAge time.Duration
}

// DefaultConfig returns the production staleness windows.
func DefaultConfig() Config {
	return Config{
		PendingMaxAge: 10 * time.Minute,
		SuccessMaxAge: 30 * 24 * time.Hour,
	}
}

// ExpiryOptions controls how IsExpired acts on a stale record.
type ExpiryOptions struct {
	// Update flips the stale record's latest flag off, making room for a
	// fresh record under the same hash.
	Update bool

	// Force treats a live SUCCEEDED record as expired (explicit
	// re-validation).
	Force bool
}

// Service is the result lifecycle manager.
type Service struct {
	packages    ports.PackageStore
	evaluations ports.EvaluationStore
	queue       ports.TaskQueue
	scorer      Scorer
	cfg         Config
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the lifecycle service. All four core dependencies are
// required.
func New(packages ports.PackageStore, evaluations ports.EvaluationStore, queue ports.TaskQueue, scorer Scorer, opts ...Option) (*Service, error) {
	if packages == nil {
		return nil, fmt.Errorf("package store is required")
	}
	if evaluations == nil {
		return nil, fmt.Errorf("evaluation store is required")
	}
	if queue == nil {
		return nil, fmt.Errorf("task queue is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	svc := &Service{
		packages:    packages,
		evaluations: evaluations,
		queue:       queue,
		scorer:      scorer,
		cfg:         DefaultConfig(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}

// ResolvePackage is the content-addressed get-or-create entry point. A live
// record for the identity's hash is returned as-is; a missing or expired one
// is superseded by a fresh PENDING record whose tree build is handed to the
// external worker.
func (s *Service) ResolvePackage(ctx context.Context, identity models.PackageIdentity, force bool) (*models.PackageRecord, error) {
	if identity.PackageName == "" && !identity.FromManifest() {
		return nil, fmt.Errorf("package name or manifest is required")
	}

	hash := HashIdentity(identity)
	existing, err := s.packages.FindLatestByHash(ctx, hash)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, fmt.Errorf("find package by hash: %w", err)
	}
	if existing != nil {
		expired, err := s.IsExpired(ctx, existing, ExpiryOptions{Update: true, Force: force})
		if err != nil {
			return nil, err
		}
		if !expired {
			return existing, nil
		}
	}

	now := requestcontext.Now(ctx)
	candidate := &models.PackageRecord{
		ID:           uuid.New(),
		Hash:         hash,
		PackageName:  identity.PackageName,
		IsProduction: identity.IsProduction,
		Date:         now,
		State:        models.State{Type: models.StatePending, Date: now},
		Latest:       true,
	}
	rec, created, err := s.packages.GetOrCreateLatest(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("create package record: %w", err)
	}
	if !created {
		// A concurrent request won the insert race; its record is the one.
		return rec, nil
	}

	if s.metrics != nil {
		s.metrics.PackagesCreated.Inc()
	}
	task := models.Task{
		CID:          rec.ID,
		PackageName:  identity.PackageName,
		Version:      identity.Version,
		IsProduction: identity.IsProduction,
		PackageJSON:  identity.PackageJSON,
		PackageLock:  identity.PackageLock,
		YarnLock:     identity.YarnLock,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// Keep transport detail out of the persisted message.
		s.failPackage(ctx, rec, "backend unavailable")
		return nil, fmt.Errorf("enqueue tree build: %w", err)
	}

	s.logger.InfoContext(ctx, "package record created",
		"cid", rec.ID,
		"package", identity.PackageName,
		"hash", hash,
	)
	return rec, nil
}

// GetPackage reads a record by id, applying the lazy timeout transition on
// the way out.
func (s *Service) GetPackage(ctx context.Context, cid uuid.UUID) (*models.PackageRecord, error) {
	rec, err := s.packages.FindByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	if _, err := s.IsExpired(ctx, rec, ExpiryOptions{}); err != nil {
		return nil, err
	}
	return rec, nil
}

// FindPackage looks up the live record for an identity without creating one
// or enqueueing work. Returns ports.ErrNotFound when no latest record exists.
func (s *Service) FindPackage(ctx context.Context, identity models.PackageIdentity) (*models.PackageRecord, error) {
	rec, err := s.packages.FindLatestByHash(ctx, HashIdentity(identity))
	if err != nil {
		return nil, err
	}
	if _, err := s.IsExpired(ctx, rec, ExpiryOptions{}); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListEvaluations returns every evaluation record of a package.
func (s *Service) ListEvaluations(ctx context.Context, packageID uuid.UUID) ([]*models.EvaluationRecord, error) {
	return s.evaluations.ListByPackage(ctx, packageID)
}

// IsExpired reports whether a record is logically stale and applies the lazy
// PENDING timeout transition. FAILED records are always expired; re-checking
// an already-FAILED record is a no-op. With opts.Update the stale record's
// latest flag is flipped off for the whole hash.
func (s *Service) IsExpired(ctx context.Context, rec *models.PackageRecord, opts ExpiryOptions) (bool, error) {
	now := requestcontext.Now(ctx)
	var expired bool

	switch rec.State.Type {
	case models.StateFailed:
		expired = true
	case models.StateSucceeded:
		expired = opts.Force || now.Sub(rec.Date) > s.cfg.SuccessMaxAge
	case models.StatePending:
		if now.Sub(rec.Date) > s.cfg.PendingMaxAge {
			state := models.State{Type: models.StateFailed, Date: now, Message: models.TimeoutMessage}
			meta := map[string]any{"error": models.TimeoutMessage}
			if err := s.packages.UpdateState(ctx, rec.ID, state, meta); err != nil {
				return false, fmt.Errorf("fail timed-out record: %w", err)
			}
			rec.State = state
			rec.Meta = meta
			expired = true
			if s.metrics != nil {
				s.metrics.PackageTimeouts.Inc()
			}
			s.logger.WarnContext(ctx, "pending record timed out", "cid", rec.ID, "package", rec.PackageName)
		}
	}

	if expired && opts.Update && rec.Latest {
		if err := s.packages.ClearLatest(ctx, rec.Hash); err != nil {
			return false, fmt.Errorf("clear latest flag: %w", err)
		}
		rec.Latest = false
	}
	return expired, nil
}

// ResolveEvaluation is the (package, rule-set)-keyed get-or-create. An
// existing scored result is reused without rerunning the scorer; otherwise,
// when the package has already SUCCEEDED, the tree is scored synchronously
// and the result persisted.
func (s *Service) ResolveEvaluation(ctx context.Context, pkg *models.PackageRecord, rawRuleSet []byte) (*models.EvaluationRecord, error) {
	if pkg == nil {
		return nil, fmt.Errorf("package record is required")
	}

	candidate := &models.EvaluationRecord{
		ID:          uuid.New(),
		PackageID:   pkg.ID,
		Date:        requestcontext.Now(ctx),
		RuleSet:     string(rawRuleSet),
		RuleSetHash: rules.Hash(rawRuleSet),
	}
	rec, _, err := s.evaluations.GetOrCreate(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("create evaluation record: %w", err)
	}
	if rec.Result != nil {
		if s.metrics != nil {
			s.metrics.EvaluationHits.Inc()
		}
		return rec, nil
	}
	if s.metrics != nil {
		s.metrics.EvaluationMisses.Inc()
	}

	if pkg.State.Type != models.StateSucceeded || pkg.Data == nil {
		// The worker has not reported back yet; the result will be
		// filled in by Complete.
		return rec, nil
	}
	if err := s.scoreEvaluation(ctx, pkg, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Complete is the worker-completion callback. An error report fails the
// record with the original message; a successful payload succeeds it and
// synchronously fills every evaluation record of the package that is still
// waiting for a result. Only PENDING records accept a completion: a late
// callback for a record that already timed out or settled is dropped, since
// FAILED is terminal.
func (s *Service) Complete(ctx context.Context, cid uuid.UUID, data *models.PackageData, workerErr string) error {
	rec, err := s.packages.FindByID(ctx, cid)
	if err != nil {
		return fmt.Errorf("find package %s: %w", cid, err)
	}
	if rec.State.Type != models.StatePending {
		s.logger.WarnContext(ctx, "ignoring completion for settled record",
			"cid", rec.ID,
			"state", rec.State.Type,
		)
		return nil
	}

	if workerErr != "" {
		s.failPackage(ctx, rec, workerErr)
		return nil
	}
	if data == nil || data.Tree == nil {
		s.failPackage(ctx, rec, "empty worker result")
		return nil
	}

	now := requestcontext.Now(ctx)
	if err := s.packages.SaveData(ctx, rec.ID, data); err != nil {
		return fmt.Errorf("save package data: %w", err)
	}
	state := models.State{Type: models.StateSucceeded, Date: now}
	if err := s.packages.UpdateState(ctx, rec.ID, state, nil); err != nil {
		return fmt.Errorf("succeed package record: %w", err)
	}
	rec.Data = data
	rec.State = state

	pending, err := s.evaluations.ListByPackage(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("list evaluations: %w", err)
	}
	for _, evaluation := range pending {
		if evaluation.Result != nil {
			continue
		}
		if err := s.scoreEvaluation(ctx, rec, evaluation); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "package record completed",
		"cid", rec.ID,
		"package", rec.PackageName,
		"evaluations", len(pending),
	)
	return nil
}

// scoreEvaluation resolves the record's rule set, runs the scorer, and
// persists the result. Evaluator precondition failures transition the whole
// package to FAILED with a descriptive message.
func (s *Service) scoreEvaluation(ctx context.Context, pkg *models.PackageRecord, rec *models.EvaluationRecord) error {
	resolved := rules.Resolve([]byte(rec.RuleSet))
	result, err := s.scorer.Score(pkg.Data.Tree, pkg.Data.Meta, resolved, pkg.Data.UnknownPackages)
	if err != nil {
		s.failPackage(ctx, pkg, err.Error())
		return fmt.Errorf("score package %s: %w", pkg.PackageName, err)
	}
	if err := s.evaluations.SetResult(ctx, rec.ID, result); err != nil {
		return fmt.Errorf("persist evaluation result: %w", err)
	}
	rec.Result = result
	if s.metrics != nil {
		s.metrics.Qualifications.WithLabelValues(string(result.Qualification)).Inc()
	}
	return nil
}

func (s *Service) failPackage(ctx context.Context, rec *models.PackageRecord, message string) {
	now := requestcontext.Now(ctx)
	state := models.State{Type: models.StateFailed, Date: now, Message: message}
	meta := map[string]any{"error": message}
	if err := s.packages.UpdateState(ctx, rec.ID, state, meta); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark record failed", "cid", rec.ID, "error", err)
		return
	}
	rec.State = state
	rec.Meta = meta
	if s.metrics != nil {
		s.metrics.PackageFailures.Inc()
	}
}
