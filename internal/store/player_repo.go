package store

import (
	"context"
	"database/sql"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

type PlayerRepository interface {
	Create(ctx context.Context, p *models.Player) error
	Get(ctx context.Context, playerID string) (*models.Player, error)
	Update(ctx context.Context, p *models.Player) error
	ListByTeamPosition(ctx context.Context, team string, position models.Position) ([]*models.Player, error)
	// WithTx returns a repository bound to q instead of the pool, so callers
	// inside Store.WithTx operate on the open transaction rather than
	// opening a new implicit one per statement.
	WithTx(q DBTX) PlayerRepository
}

type PostgresPlayerRepository struct {
	q DBTX
}

func NewPlayerRepository(q DBTX) *PostgresPlayerRepository {
	return &PostgresPlayerRepository{q: q}
}

func (r *PostgresPlayerRepository) WithTx(q DBTX) PlayerRepository {
	return &PostgresPlayerRepository{q: q}
}

func (r *PostgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (
			player_id, name, team, position, status, depth_chart_position,
			is_rookie, is_fill_player, draft_round, draft_pick, draft_team,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.q.ExecContext(ctx, query,
		p.PlayerID, p.Name, p.Team, p.Position, p.Status, p.DepthChartPosition,
		p.IsRookie, p.IsFillPlayer, p.DraftRound, p.DraftPick, p.DraftTeam,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("create player: %v", err)
	}
	return nil
}

func (r *PostgresPlayerRepository) Get(ctx context.Context, playerID string) (*models.Player, error) {
	query := `
		SELECT player_id, name, team, position, status, depth_chart_position,
			   is_rookie, is_fill_player, draft_round, draft_pick, draft_team,
			   created_at, updated_at
		FROM players WHERE player_id = $1
	`
	p := &models.Player{}
	err := r.q.QueryRowContext(ctx, query, playerID).Scan(
		&p.PlayerID, &p.Name, &p.Team, &p.Position, &p.Status, &p.DepthChartPosition,
		&p.IsRookie, &p.IsFillPlayer, &p.DraftRound, &p.DraftPick, &p.DraftTeam,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("player %s not found", playerID)
	}
	if err != nil {
		return nil, apperr.Internal("get player: %v", err)
	}
	return p, nil
}

func (r *PostgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET name = $2, team = $3, status = $4, depth_chart_position = $5,
			is_rookie = $6, updated_at = $7
		WHERE player_id = $1
	`
	res, err := r.q.ExecContext(ctx, query,
		p.PlayerID, p.Name, p.Team, p.Status, p.DepthChartPosition, p.IsRookie, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("update player: %v", err)
	}
	return rowsAffected(res, apperr.NotFound("player %s not found", p.PlayerID))
}

func (r *PostgresPlayerRepository) ListByTeamPosition(ctx context.Context, team string, position models.Position) ([]*models.Player, error) {
	query := `
		SELECT player_id, name, team, position, status, depth_chart_position,
			   is_rookie, is_fill_player, draft_round, draft_pick, draft_team,
			   created_at, updated_at
		FROM players WHERE team = $1 AND position = $2
	`
	rows, err := r.q.QueryContext(ctx, query, team, position)
	if err != nil {
		return nil, apperr.Internal("list players: %v", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(
			&p.PlayerID, &p.Name, &p.Team, &p.Position, &p.Status, &p.DepthChartPosition,
			&p.IsRookie, &p.IsFillPlayer, &p.DraftRound, &p.DraftPick, &p.DraftTeam,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, apperr.Internal("scan player: %v", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return players, nil
}

var _ PlayerRepository = (*PostgresPlayerRepository)(nil)
