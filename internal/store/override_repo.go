package store

import (
	"context"
	"database/sql"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

// OverrideRepository backs manual stat overrides. Exactly one row exists per
// (projection_id, stat_name); Upsert replaces an existing row for that pair
// rather than erroring.
type OverrideRepository interface {
	Upsert(ctx context.Context, o *models.StatOverride) error
	Get(ctx context.Context, overrideID string) (*models.StatOverride, error)
	GetByProjectionStat(ctx context.Context, projectionID, statName string) (*models.StatOverride, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*models.StatOverride, error)
	ListByProjection(ctx context.Context, projectionID string) ([]*models.StatOverride, error)
	Delete(ctx context.Context, overrideID string) error
	DeleteByProjection(ctx context.Context, projectionID string) error
	CountByProjection(ctx context.Context, projectionID string) (int, error)
	// WithTx returns a repository bound to q instead of the pool, so callers
	// inside Store.WithTx operate on the open transaction rather than
	// opening a new implicit one per statement.
	WithTx(q DBTX) OverrideRepository
}

type PostgresOverrideRepository struct {
	q DBTX
}

func NewOverrideRepository(q DBTX) *PostgresOverrideRepository {
	return &PostgresOverrideRepository{q: q}
}

func (r *PostgresOverrideRepository) WithTx(q DBTX) OverrideRepository {
	return &PostgresOverrideRepository{q: q}
}

const overrideColumns = `override_id, player_id, projection_id, stat_name,
	calculated_value, manual_value, notes, created_at`

func scanOverride(row interface{ Scan(...interface{}) error }) (*models.StatOverride, error) {
	o := &models.StatOverride{}
	err := row.Scan(
		&o.OverrideID, &o.PlayerID, &o.ProjectionID, &o.StatName,
		&o.CalculatedValue, &o.ManualValue, &o.Notes, &o.CreatedAt,
	)
	return o, err
}

// Upsert inserts a new override row, or replaces the existing one for the
// same (projection_id, stat_name) pair via the table's unique constraint.
func (r *PostgresOverrideRepository) Upsert(ctx context.Context, o *models.StatOverride) error {
	query := `
		INSERT INTO stat_overrides (` + overrideColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (projection_id, stat_name) DO UPDATE SET
			override_id = EXCLUDED.override_id,
			calculated_value = EXCLUDED.calculated_value,
			manual_value = EXCLUDED.manual_value,
			notes = EXCLUDED.notes,
			created_at = EXCLUDED.created_at
	`
	_, err := r.q.ExecContext(ctx, query,
		o.OverrideID, o.PlayerID, o.ProjectionID, o.StatName,
		o.CalculatedValue, o.ManualValue, o.Notes, o.CreatedAt,
	)
	if err != nil {
		return apperr.Internal("upsert override: %v", err)
	}
	return nil
}

func (r *PostgresOverrideRepository) Get(ctx context.Context, overrideID string) (*models.StatOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM stat_overrides WHERE override_id = $1`
	o, err := scanOverride(r.q.QueryRowContext(ctx, query, overrideID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("override %s not found", overrideID)
	}
	if err != nil {
		return nil, apperr.Internal("get override: %v", err)
	}
	return o, nil
}

func (r *PostgresOverrideRepository) GetByProjectionStat(ctx context.Context, projectionID, statName string) (*models.StatOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM stat_overrides WHERE projection_id = $1 AND stat_name = $2`
	o, err := scanOverride(r.q.QueryRowContext(ctx, query, projectionID, statName))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("override for projection %s stat %s not found", projectionID, statName)
	}
	if err != nil {
		return nil, apperr.Internal("get override: %v", err)
	}
	return o, nil
}

func (r *PostgresOverrideRepository) ListByPlayer(ctx context.Context, playerID string) ([]*models.StatOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM stat_overrides WHERE player_id = $1 ORDER BY created_at DESC`
	return r.queryOverrides(ctx, query, playerID)
}

func (r *PostgresOverrideRepository) ListByProjection(ctx context.Context, projectionID string) ([]*models.StatOverride, error) {
	query := `SELECT ` + overrideColumns + ` FROM stat_overrides WHERE projection_id = $1 ORDER BY created_at DESC`
	return r.queryOverrides(ctx, query, projectionID)
}

func (r *PostgresOverrideRepository) queryOverrides(ctx context.Context, query string, args ...interface{}) ([]*models.StatOverride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal("query overrides: %v", err)
	}
	defer rows.Close()

	var out []*models.StatOverride
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, apperr.Internal("scan override: %v", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return out, nil
}

func (r *PostgresOverrideRepository) Delete(ctx context.Context, overrideID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM stat_overrides WHERE override_id = $1`, overrideID)
	if err != nil {
		return apperr.Internal("delete override: %v", err)
	}
	return rowsAffected(res, apperr.NotFound("override %s not found", overrideID))
}

func (r *PostgresOverrideRepository) DeleteByProjection(ctx context.Context, projectionID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM stat_overrides WHERE projection_id = $1`, projectionID)
	if err != nil {
		return apperr.Internal("delete overrides for projection: %v", err)
	}
	return nil
}

func (r *PostgresOverrideRepository) CountByProjection(ctx context.Context, projectionID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM stat_overrides WHERE projection_id = $1`, projectionID).Scan(&n)
	if err != nil {
		return 0, apperr.Internal("count overrides: %v", err)
	}
	return n, nil
}

var _ OverrideRepository = (*PostgresOverrideRepository)(nil)
