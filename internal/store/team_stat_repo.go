package store

import (
	"context"
	"database/sql"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

type TeamStatRepository interface {
	Get(ctx context.Context, team string, season int) (*models.TeamStat, error)
	Upsert(ctx context.Context, t *models.TeamStat) error
}

type PostgresTeamStatRepository struct {
	q DBTX
}

func NewTeamStatRepository(q DBTX) *PostgresTeamStatRepository {
	return &PostgresTeamStatRepository{q: q}
}

const teamStatColumns = `team_stat_id, team, season, week, plays, pass_attempts, pass_yards,
	pass_td, rush_attempts, rush_yards, rush_td, targets, receptions, rec_yards, rec_td,
	rank, created_at, updated_at`

func scanTeamStat(row interface{ Scan(...interface{}) error }) (*models.TeamStat, error) {
	t := &models.TeamStat{}
	err := row.Scan(
		&t.TeamStatID, &t.Team, &t.Season, &t.Week, &t.Plays, &t.PassAttempts, &t.PassYards,
		&t.PassTD, &t.RushAttempts, &t.RushYards, &t.RushTD, &t.Targets, &t.Receptions,
		&t.RecYards, &t.RecTD, &t.Rank, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// Get retrieves the season-total TeamStat (week IS NULL) for a team/season.
func (r *PostgresTeamStatRepository) Get(ctx context.Context, team string, season int) (*models.TeamStat, error) {
	query := `SELECT ` + teamStatColumns + ` FROM team_stats WHERE team = $1 AND season = $2 AND week IS NULL`
	t, err := scanTeamStat(r.q.QueryRowContext(ctx, query, team, season))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("team context for %s season %d not found", team, season)
	}
	if err != nil {
		return nil, apperr.Internal("get team stat: %v", err)
	}
	return t, nil
}

func (r *PostgresTeamStatRepository) Upsert(ctx context.Context, t *models.TeamStat) error {
	query := `
		INSERT INTO team_stats (
			team_stat_id, team, season, week, plays, pass_attempts, pass_yards, pass_td,
			rush_attempts, rush_yards, rush_td, targets, receptions, rec_yards, rec_td, rank,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (team, season, week) DO UPDATE SET
			plays = EXCLUDED.plays, pass_attempts = EXCLUDED.pass_attempts,
			pass_yards = EXCLUDED.pass_yards, pass_td = EXCLUDED.pass_td,
			rush_attempts = EXCLUDED.rush_attempts, rush_yards = EXCLUDED.rush_yards,
			rush_td = EXCLUDED.rush_td, targets = EXCLUDED.targets,
			receptions = EXCLUDED.receptions, rec_yards = EXCLUDED.rec_yards,
			rec_td = EXCLUDED.rec_td, rank = EXCLUDED.rank, updated_at = EXCLUDED.updated_at
	`
	_, err := r.q.ExecContext(ctx, query,
		t.TeamStatID, t.Team, t.Season, t.Week, t.Plays, t.PassAttempts, t.PassYards, t.PassTD,
		t.RushAttempts, t.RushYards, t.RushTD, t.Targets, t.Receptions, t.RecYards, t.RecTD,
		t.Rank, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("upsert team stat: %v", err)
	}
	return nil
}

var _ TeamStatRepository = (*PostgresTeamStatRepository)(nil)
