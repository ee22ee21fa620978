// Package rookie builds a rookie's first Projection from a position +
// draft-slot template lookup, for players with no game history to run the
// baseline builder against. The table-driven lookup-then-scale shape
// follows internal/draft/value_calculator.go's position-keyed baseline
// lookup.
package rookie

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rates"
	"github.com/fantasyprojections/engine/internal/scoring"
	"github.com/fantasyprojections/engine/internal/store"
)

func f(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 { return &v }

// Service builds rookie projections from the template table.
type Service struct {
	templates   store.RookieTemplateRepository
	players     store.PlayerRepository
	projections store.ProjectionRepository
	db          *store.Store
}

func NewService(templates store.RookieTemplateRepository, players store.PlayerRepository, projections store.ProjectionRepository, db *store.Store) *Service {
	return &Service{templates: templates, players: players, projections: projections, db: db}
}

// selectTemplate finds the template whose pick range covers the player's
// draft_pick. If none matches (UDFA or an out-of-range pick), it falls back
// to the lowest-round template for the position with games scaled by 0.5.
func selectTemplate(templates []*models.RookieProjectionTemplate, position models.Position, draftPick int) (*models.RookieProjectionTemplate, bool) {
	var lowest *models.RookieProjectionTemplate
	for _, t := range templates {
		if t.Matches(position, draftPick) {
			return t, true
		}
		if lowest == nil || t.DraftRound > lowest.DraftRound {
			lowest = t
		}
	}
	if lowest == nil {
		return nil, false
	}
	fallback := *lowest
	fallback.Games = lowest.Games * 0.5
	return &fallback, true
}

// Build looks up player's template by position and draft pick and seeds a
// new baseline Projection for season from its per-game rates, then derives
// rate stats and half_ppr.
func (s *Service) Build(ctx context.Context, playerID string, season int) (*models.Projection, error) {
	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.Status != models.StatusRookie {
		return nil, apperr.Precondition("RookieRequiresTemplate: player %s is not flagged Rookie", playerID)
	}
	if player.DraftRound == nil || player.DraftPick == nil {
		return nil, apperr.Precondition("RookieRequiresTemplate: player %s has no draft_round/draft_pick", playerID)
	}

	templates, err := s.templates.ListByPosition(ctx, player.Position)
	if err != nil {
		return nil, err
	}
	template, ok := selectTemplate(templates, player.Position, *player.DraftPick)
	if !ok {
		return nil, apperr.Precondition("RookieRequiresTemplate: no template for position %s", player.Position)
	}

	p := buildFromTemplate(player, template, season)

	if err := rates.Derive(p); err != nil {
		return nil, err
	}
	scoring.Recompute(p)

	if err := s.db.WithTx(ctx, func(q store.DBTX) error {
		return s.projections.WithTx(q).Create(ctx, p)
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// buildFromTemplate multiplies the template's per-game rates by games to
// produce the counting stats a fresh rookie projection starts from. The
// template's snap_share is copied onto the projection and is not used as a
// multiplier.
func buildFromTemplate(player *models.Player, t *models.RookieProjectionTemplate, season int) *models.Projection {
	now := time.Now()
	p := &models.Projection{
		ProjectionID: uuid.NewString(),
		PlayerID:     player.PlayerID,
		Season:       season,
		Games:        int(t.Games + 0.5),
		SnapShare:    ptr(t.SnapShare),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch player.Position {
	case models.QB:
		passAttempts := f(t.PassAttempts) * t.Games
		p.PassAttempts = ptr(passAttempts)
		p.CompPct = t.CompPct
		p.Completions = ptr(passAttempts * f(t.CompPct))
		p.YardsPerAtt = t.YardsPerAtt
		p.PassYards = ptr(passAttempts * f(t.YardsPerAtt))
		p.PassTDRate = t.PassTDRate
		p.PassTD = ptr(passAttempts * f(t.PassTDRate))
		p.IntRate = t.IntRate
		p.Interceptions = ptr(passAttempts * f(t.IntRate))

		rushAttempts := f(t.RushAttPerGame) * t.Games
		p.RushAttempts = ptr(rushAttempts)
		p.YardsPerCarry = t.RushYardsPerAtt
		p.RushYards = ptr(rushAttempts * f(t.RushYardsPerAtt))
		p.RushTD = ptr(f(t.RushTDPerGame) * t.Games)

	case models.RB:
		rushAttempts := f(t.RushAttPerGame) * t.Games
		p.RushAttempts = ptr(rushAttempts)
		p.YardsPerCarry = t.RushYardsPerAtt
		p.RushYards = ptr(rushAttempts * f(t.RushYardsPerAtt))
		p.RushTD = ptr(rushAttempts * f(t.RushTDPerAtt))

		targets := f(t.TargetsPerGame) * t.Games
		p.Targets = ptr(targets)
		p.CatchPct = t.CatchRate
		receptions := targets * f(t.CatchRate)
		p.Receptions = ptr(receptions)
		p.RecYards = ptr(receptions * f(t.RecYardsPerCatch))
		p.RecTD = ptr(receptions * f(t.RecTDPerCatch))

	case models.WR, models.TE:
		targets := f(t.TargetsPerGame) * t.Games
		p.Targets = ptr(targets)
		p.CatchPct = t.CatchRate
		receptions := targets * f(t.CatchRate)
		p.Receptions = ptr(receptions)
		p.RecYards = ptr(receptions * f(t.RecYardsPerCatch))
		p.RecTD = ptr(receptions * f(t.RecTDPerCatch))

		if t.RushAttPerGame != nil {
			rushAttempts := f(t.RushAttPerGame) * t.Games
			p.RushAttempts = ptr(rushAttempts)
			p.RushYards = ptr(rushAttempts * f(t.RushYardsPerAtt))
			p.RushTD = ptr(rushAttempts * f(t.RushTDPerAtt))
		}
	}

	return p
}
