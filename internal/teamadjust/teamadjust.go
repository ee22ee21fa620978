// Package teamadjust implements team-level adjustment propagation: Direct
// mode derives a factor bundle from two TeamStat snapshots, and Scope mode
// applies a bundle to every affected player on a team/season/scenario. The
// scope-mode fan-out (iterate every player at a position, apply one shared
// computation) is adapted from internal/draft/value_calculator.go's
// CalculatePositionalScarcity.
package teamadjust

import (
	"context"
	"time"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rates"
	"github.com/fantasyprojections/engine/internal/scoring"
	"github.com/fantasyprojections/engine/internal/store"
)

// Bundle is the derived set of scaling factors from a pair of TeamStat
// snapshots under Direct mode.
type Bundle struct {
	PassVolume     float64
	RushVolume     float64
	PassEfficiency float64
	RushEfficiency float64
	ScoringRate    float64
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 1
	}
	return num / den
}

// DeriveBundle computes the factor bundle from an original and a new
// TeamStat snapshot.
func DeriveBundle(orig, newStat *models.TeamStat) Bundle {
	origPassYPA := safeDiv(orig.PassYards, orig.PassAttempts)
	newPassYPA := safeDiv(newStat.PassYards, newStat.PassAttempts)
	origRushYPC := safeDiv(orig.RushYards, orig.RushAttempts)
	newRushYPC := safeDiv(newStat.RushYards, newStat.RushAttempts)

	return Bundle{
		PassVolume:     safeDiv(newStat.PassAttempts, orig.PassAttempts),
		RushVolume:     safeDiv(newStat.RushAttempts, orig.RushAttempts),
		PassEfficiency: safeDiv(newPassYPA, origPassYPA),
		RushEfficiency: safeDiv(newRushYPC, origRushYPC),
		ScoringRate:    safeDiv(newStat.PassTD+newStat.RushTD, orig.PassTD+orig.RushTD),
	}
}

func mul(p **float64, factor float64) {
	if *p == nil {
		return
	}
	v := **p * factor
	*p = &v
}

// ApplyBundle mutates a single projection snapshot in place per the
// per-position rules below. It is pure — callers materialize the
// pre-adjustment snapshot once and pass a fresh copy each time, which is
// what makes repeated calls with the same bundle idempotent: applying the
// same bundle twice from two independent snapshots of the same starting
// point yields the same result both times, rather than compounding.
func ApplyBundle(p *models.Projection, position models.Position, b Bundle) {
	switch position {
	case models.QB:
		mul(&p.PassAttempts, b.PassVolume)
		mul(&p.Completions, b.PassVolume)
		mul(&p.PassYards, b.PassVolume*b.PassEfficiency)
		mul(&p.PassTD, b.ScoringRate)
		rushFactor := b.RushVolume * b.RushEfficiency
		mul(&p.RushAttempts, b.RushVolume)
		mul(&p.RushYards, rushFactor)
	case models.RB:
		rushFactor := b.RushVolume * b.RushEfficiency
		mul(&p.RushAttempts, b.RushVolume)
		mul(&p.RushYards, rushFactor)
		mul(&p.RushTD, b.ScoringRate)
		mul(&p.Targets, b.PassVolume)
		mul(&p.Receptions, b.PassVolume)
		mul(&p.RecYards, b.PassVolume)
		mul(&p.RecTD, b.ScoringRate)
	case models.WR, models.TE:
		mul(&p.Targets, b.PassVolume)
		mul(&p.Receptions, b.PassVolume)
		mul(&p.RecYards, b.PassVolume*b.PassEfficiency)
		mul(&p.RecTD, b.ScoringRate)
	}
}

// Service drives Direct and Scope modes against the store.
type Service struct {
	players     store.PlayerRepository
	projections store.ProjectionRepository
	db          *store.Store
}

func NewService(players store.PlayerRepository, projections store.ProjectionRepository, db *store.Store) *Service {
	return &Service{players: players, projections: projections, db: db}
}

// Direct applies the bundle derived from (orig, new) to the given
// projections, keyed by their owning player's position.
func (s *Service) Direct(ctx context.Context, orig, newStat *models.TeamStat, targets []*models.Projection, positions map[string]models.Position) ([]*models.Projection, error) {
	bundle := DeriveBundle(orig, newStat)
	return s.applyToAll(ctx, targets, positions, bundle)
}

// Scope selects every projection whose player currently plays for `team` in
// `season`/`scenarioID` and applies the bundle.
func (s *Service) Scope(ctx context.Context, team string, season int, scenarioID *string, bundle Bundle) ([]*models.Projection, error) {
	var targets []*models.Projection
	positions := map[string]models.Position{}

	for _, pos := range []models.Position{models.QB, models.RB, models.WR, models.TE} {
		players, err := s.players.ListByTeamPosition(ctx, team, pos)
		if err != nil {
			return nil, err
		}
		for _, pl := range players {
			if pl.IsFillPlayer {
				continue
			}
			proj, err := s.projectionFor(ctx, pl.PlayerID, season, scenarioID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					continue
				}
				return nil, err
			}
			targets = append(targets, proj)
			positions[proj.ProjectionID] = pos
		}
	}

	return s.applyToAll(ctx, targets, positions, bundle)
}

func (s *Service) projectionFor(ctx context.Context, playerID string, season int, scenarioID *string) (*models.Projection, error) {
	if scenarioID == nil {
		return s.projections.GetBaseline(ctx, playerID, season)
	}
	all, err := s.projections.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.Season == season && p.ScenarioID != nil && *p.ScenarioID == *scenarioID {
			return p, nil
		}
	}
	return nil, apperr.NotFound("no projection for player %s season %d scenario %s", playerID, season, *scenarioID)
}

func (s *Service) applyToAll(ctx context.Context, targets []*models.Projection, positions map[string]models.Position, bundle Bundle) ([]*models.Projection, error) {
	updated := make([]*models.Projection, 0, len(targets))
	for _, p := range targets {
		prevUpdatedAt := p.UpdatedAt
		ApplyBundle(p, positions[p.ProjectionID], bundle)
		if err := rates.Derive(p); err != nil {
			return nil, err
		}
		scoring.Recompute(p)
		p.UpdatedAt = time.Now()

		if err := s.db.WithTx(ctx, func(q store.DBTX) error {
			return s.projections.WithTx(q).Update(ctx, p, prevUpdatedAt)
		}); err != nil {
			return nil, err
		}
		updated = append(updated, p)
	}
	return updated, nil
}
