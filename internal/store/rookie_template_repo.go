package store

import (
	"context"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

// RookieTemplateRepository is the read-only position + draft-slot lookup
// table backing the rookie builder.
type RookieTemplateRepository interface {
	ListByPosition(ctx context.Context, position models.Position) ([]*models.RookieProjectionTemplate, error)
}

type PostgresRookieTemplateRepository struct {
	q DBTX
}

func NewRookieTemplateRepository(q DBTX) *PostgresRookieTemplateRepository {
	return &PostgresRookieTemplateRepository{q: q}
}

const rookieTemplateColumns = `template_id, position, draft_round, draft_pick_min, draft_pick_max,
	games, snap_share,
	pass_attempts, comp_pct, yards_per_att, pass_td_rate, int_rate,
	rush_att_per_game, rush_yards_per_att, rush_td_per_game,
	targets_per_game, catch_rate, rec_yards_per_catch, rec_td_per_catch, rush_td_per_att,
	created_at, updated_at`

func scanRookieTemplate(row interface{ Scan(...interface{}) error }) (*models.RookieProjectionTemplate, error) {
	t := &models.RookieProjectionTemplate{}
	err := row.Scan(
		&t.TemplateID, &t.Position, &t.DraftRound, &t.DraftPickMin, &t.DraftPickMax,
		&t.Games, &t.SnapShare,
		&t.PassAttempts, &t.CompPct, &t.YardsPerAtt, &t.PassTDRate, &t.IntRate,
		&t.RushAttPerGame, &t.RushYardsPerAtt, &t.RushTDPerGame,
		&t.TargetsPerGame, &t.CatchRate, &t.RecYardsPerCatch, &t.RecTDPerCatch, &t.RushTDPerAtt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *PostgresRookieTemplateRepository) ListByPosition(ctx context.Context, position models.Position) ([]*models.RookieProjectionTemplate, error) {
	query := `SELECT ` + rookieTemplateColumns + ` FROM rookie_projection_templates WHERE position = $1 ORDER BY draft_round ASC, draft_pick_min ASC`
	rows, err := r.q.QueryContext(ctx, query, position)
	if err != nil {
		return nil, apperr.Internal("query rookie templates: %v", err)
	}
	defer rows.Close()

	var out []*models.RookieProjectionTemplate
	for rows.Next() {
		t, err := scanRookieTemplate(rows)
		if err != nil {
			return nil, apperr.Internal("scan rookie template: %v", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return out, nil
}

var _ RookieTemplateRepository = (*PostgresRookieTemplateRepository)(nil)
