package store

import (
	"context"
	"database/sql"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

// ScenarioRepository backs scenario CRUD plus the clone and delete-cascade
// operations.
type ScenarioRepository interface {
	Create(ctx context.Context, s *models.Scenario) error
	Get(ctx context.Context, scenarioID string) (*models.Scenario, error)
	List(ctx context.Context, season *int) ([]*models.Scenario, error)
	// Delete removes the scenario row only — cascading its projections and
	// overrides is the caller's (internal/scenario) responsibility inside
	// one transaction, rather than relying on a DB-level ON DELETE CASCADE
	// the service layer cannot observe or report on.
	Delete(ctx context.Context, scenarioID string) error
	// WithTx returns a repository bound to q instead of the pool, so callers
	// inside Store.WithTx operate on the open transaction rather than
	// opening a new implicit one per statement.
	WithTx(q DBTX) ScenarioRepository
}

type PostgresScenarioRepository struct {
	q DBTX
}

func NewScenarioRepository(q DBTX) *PostgresScenarioRepository {
	return &PostgresScenarioRepository{q: q}
}

func (r *PostgresScenarioRepository) WithTx(q DBTX) ScenarioRepository {
	return &PostgresScenarioRepository{q: q}
}

const scenarioColumns = `scenario_id, name, description, is_baseline, base_scenario_id,
	season, parameters, created_at, updated_at`

func scanScenario(row interface{ Scan(...interface{}) error }) (*models.Scenario, error) {
	s := &models.Scenario{}
	err := row.Scan(
		&s.ScenarioID, &s.Name, &s.Description, &s.IsBaseline, &s.BaseScenarioID,
		&s.Season, &s.Parameters, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *PostgresScenarioRepository) Create(ctx context.Context, s *models.Scenario) error {
	query := `INSERT INTO scenarios (` + scenarioColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.ExecContext(ctx, query,
		s.ScenarioID, s.Name, s.Description, s.IsBaseline, s.BaseScenarioID,
		s.Season, s.Parameters, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("create scenario: %v", err)
	}
	return nil
}

func (r *PostgresScenarioRepository) Get(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE scenario_id = $1`
	s, err := scanScenario(r.q.QueryRowContext(ctx, query, scenarioID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("scenario %s not found", scenarioID)
	}
	if err != nil {
		return nil, apperr.Internal("get scenario: %v", err)
	}
	return s, nil
}

func (r *PostgresScenarioRepository) List(ctx context.Context, season *int) ([]*models.Scenario, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenarios WHERE ($1::int IS NULL OR season = $1) ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query, season)
	if err != nil {
		return nil, apperr.Internal("list scenarios: %v", err)
	}
	defer rows.Close()

	var out []*models.Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, apperr.Internal("scan scenario: %v", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return out, nil
}

func (r *PostgresScenarioRepository) Delete(ctx context.Context, scenarioID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM scenarios WHERE scenario_id = $1`, scenarioID)
	if err != nil {
		return apperr.Internal("delete scenario: %v", err)
	}
	return rowsAffected(res, apperr.NotFound("scenario %s not found", scenarioID))
}

var _ ScenarioRepository = (*PostgresScenarioRepository)(nil)
