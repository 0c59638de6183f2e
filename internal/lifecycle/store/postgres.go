package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/lifecycle/models"
	"corpcheck/internal/lifecycle/ports"
)

// PostgresPackageStore persists package records in PostgreSQL. The dedup
// invariant (one latest=true record per hash) is enforced by the partial
// unique index in schema.sql, so concurrent get-or-create races are settled
// by the database, not by in-process locking.
type PostgresPackageStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPackageStore constructs a PostgreSQL-backed package store.
func NewPostgresPackageStore(pool *pgxpool.Pool) *PostgresPackageStore {
	return &PostgresPackageStore{pool: pool}
}

func (s *PostgresPackageStore) GetOrCreateLatest(ctx context.Context, candidate *models.PackageRecord) (*models.PackageRecord, bool, error) {
	meta, err := marshalJSON(candidate.Meta)
	if err != nil {
		return nil, false, fmt.Errorf("encode meta: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO package_records
			(id, hash, package_name, is_production, date, state_type, state_date, state_message, latest, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		ON CONFLICT (hash) WHERE latest DO NOTHING
	`, candidate.ID, candidate.Hash, candidate.PackageName, candidate.IsProduction, candidate.Date,
		string(candidate.State.Type), candidate.State.Date, candidate.State.Message, meta)
	if err != nil {
		return nil, false, fmt.Errorf("insert package record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return clonePackage(candidate), true, nil
	}
	rec, err := s.FindLatestByHash(ctx, candidate.Hash)
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

func (s *PostgresPackageStore) FindByID(ctx context.Context, id uuid.UUID) (*models.PackageRecord, error) {
	return s.scanOne(ctx, `
		SELECT id, hash, package_name, is_production, date, state_type, state_date, state_message, latest, data, meta
		FROM package_records WHERE id = $1
	`, id)
}

func (s *PostgresPackageStore) FindLatestByHash(ctx context.Context, hash string) (*models.PackageRecord, error) {
	return s.scanOne(ctx, `
		SELECT id, hash, package_name, is_production, date, state_type, state_date, state_message, latest, data, meta
		FROM package_records WHERE hash = $1 AND latest
	`, hash)
}

func (s *PostgresPackageStore) UpdateState(ctx context.Context, id uuid.UUID, state models.State, meta map[string]any) error {
	encoded, err := marshalJSON(meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE package_records
		SET state_type = $2, state_date = $3, state_message = $4, meta = COALESCE($5, meta)
		WHERE id = $1
	`, id, string(state.Type), state.Date, state.Message, encoded)
	if err != nil {
		return fmt.Errorf("update package state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresPackageStore) SaveData(ctx context.Context, id uuid.UUID, data *models.PackageData) error {
	encoded, err := marshalJSON(data)
	if err != nil {
		return fmt.Errorf("encode package data: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE package_records SET data = $2 WHERE id = $1`, id, encoded)
	if err != nil {
		return fmt.Errorf("save package data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresPackageStore) ClearLatest(ctx context.Context, hash string) error {
	_, err := s.pool.Exec(ctx, `UPDATE package_records SET latest = FALSE WHERE hash = $1`, hash)
	if err != nil {
		return fmt.Errorf("clear latest flag: %w", err)
	}
	return nil
}

func (s *PostgresPackageStore) scanOne(ctx context.Context, query string, arg any) (*models.PackageRecord, error) {
	var (
		rec       models.PackageRecord
		stateType string
		data      []byte
		meta      []byte
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&rec.ID, &rec.Hash, &rec.PackageName, &rec.IsProduction, &rec.Date,
		&stateType, &rec.State.Date, &rec.State.Message, &rec.Latest, &data, &meta,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query package record: %w", err)
	}
	rec.State.Type = models.StateType(stateType)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, fmt.Errorf("decode package data: %w", err)
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.Meta); err != nil {
			return nil, fmt.Errorf("decode package meta: %w", err)
		}
	}
	return &rec, nil
}

// PostgresEvaluationStore persists evaluation records in PostgreSQL, with
// uniqueness on (package_id, rule_set_hash) settling concurrent creates.
type PostgresEvaluationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresEvaluationStore constructs a PostgreSQL-backed evaluation store.
func NewPostgresEvaluationStore(pool *pgxpool.Pool) *PostgresEvaluationStore {
	return &PostgresEvaluationStore{pool: pool}
}

func (s *PostgresEvaluationStore) GetOrCreate(ctx context.Context, candidate *models.EvaluationRecord) (*models.EvaluationRecord, bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO evaluation_records (id, package_id, date, rule_set, rule_set_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (package_id, rule_set_hash) DO NOTHING
	`, candidate.ID, candidate.PackageID, candidate.Date, candidate.RuleSet, candidate.RuleSetHash)
	if err != nil {
		return nil, false, fmt.Errorf("insert evaluation record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return cloneEvaluation(candidate), true, nil
	}

	rec, err := s.scanOne(ctx, `
		SELECT id, package_id, date, rule_set, rule_set_hash, result
		FROM evaluation_records WHERE package_id = $1 AND rule_set_hash = $2
	`, candidate.PackageID, candidate.RuleSetHash)
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

func (s *PostgresEvaluationStore) SetResult(ctx context.Context, id uuid.UUID, result *evalmodels.FinalEvaluation) error {
	encoded, err := marshalJSON(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE evaluation_records SET result = $2 WHERE id = $1`, id, encoded)
	if err != nil {
		return fmt.Errorf("set evaluation result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *PostgresEvaluationStore) ListByPackage(ctx context.Context, packageID uuid.UUID) ([]*models.EvaluationRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, package_id, date, rule_set, rule_set_hash, result
		FROM evaluation_records WHERE package_id = $1
		ORDER BY date
	`, packageID)
	if err != nil {
		return nil, fmt.Errorf("list evaluation records: %w", err)
	}
	defer rows.Close()

	var out []*models.EvaluationRecord
	for rows.Next() {
		rec, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresEvaluationStore) scanOne(ctx context.Context, query string, args ...any) (*models.EvaluationRecord, error) {
	rec, err := scanEvaluation(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	return rec, err
}

func scanEvaluation(row pgx.Row) (*models.EvaluationRecord, error) {
	var (
		rec    models.EvaluationRecord
		result []byte
	)
	err := row.Scan(&rec.ID, &rec.PackageID, &rec.Date, &rec.RuleSet, &rec.RuleSetHash, &result)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("decode evaluation result: %w", err)
		}
	}
	return &rec, nil
}

// marshalJSON encodes a value for a jsonb column, keeping NULL for nil input.
func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch typed := v.(type) {
	case map[string]any:
		if typed == nil {
			return nil, nil
		}
	case *models.PackageData:
		if typed == nil {
			return nil, nil
		}
	case *evalmodels.FinalEvaluation:
		if typed == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
