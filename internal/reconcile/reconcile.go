// Package reconcile synthesizes fill players so that the sum of a team's
// real player projections reconciles to its team-level totals within
// epsilon. It deletes any fill projections left over from a prior run on
// the (team, season, scenario) before reconciling; the per-position fan-out
// mirrors internal/teamadjust's Scope mode.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rates"
	"github.com/fantasyprojections/engine/internal/scoring"
	"github.com/fantasyprojections/engine/internal/store"
)

// epsilon is the per-category reconciliation tolerance: a residual at or
// below this is treated as already reconciled and skipped.
const epsilon = 0.5

func f(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 { return &v }

// residuals accumulates team-total minus sum-of-players per category.
type residuals struct {
	passAttempts, passYards, passTD      float64
	rushAttempts, rushYards, rushTD      float64
	targets, receptions, recYards, recTD float64
}

// Service drives the reconciliation pass against the store.
type Service struct {
	players     store.PlayerRepository
	projections store.ProjectionRepository
	teamStats   store.TeamStatRepository
	db          *store.Store
}

func NewService(players store.PlayerRepository, projections store.ProjectionRepository, teamStats store.TeamStatRepository, db *store.Store) *Service {
	return &Service{players: players, projections: projections, teamStats: teamStats, db: db}
}

// Reconcile deletes any fill projections left over from a prior run on this
// (team, season, scenario), recomputes residuals against the remaining real
// players, and creates fresh fill projections for whichever position
// buckets still have a residual beyond epsilon. It returns the fill
// projections created (nil if every category already reconciles).
func (s *Service) Reconcile(ctx context.Context, team string, season int, scenarioID *string) ([]*models.Projection, error) {
	teamStat, err := s.teamStats.Get(ctx, team, season)
	if err != nil {
		return nil, err
	}

	byPosition := map[models.Position][]*models.Player{}
	for _, pos := range []models.Position{models.QB, models.RB, models.WR, models.TE} {
		players, err := s.players.ListByTeamPosition(ctx, team, pos)
		if err != nil {
			return nil, err
		}
		byPosition[pos] = players
	}

	var created []*models.Projection
	err = s.db.WithTx(ctx, func(q store.DBTX) error {
		projections := s.projections.WithTx(q)
		players := s.players.WithTx(q)

		if err := s.deletePriorFills(ctx, projections, byPosition, season, scenarioID); err != nil {
			return err
		}

		r, recvByPosition, err := s.sumActuals(ctx, projections, byPosition, season, scenarioID)
		if err != nil {
			return err
		}
		r.passAttempts = teamStat.PassAttempts - r.passAttempts
		r.passYards = teamStat.PassYards - r.passYards
		r.passTD = teamStat.PassTD - r.passTD
		r.rushAttempts = teamStat.RushAttempts - r.rushAttempts
		r.rushYards = teamStat.RushYards - r.rushYards
		r.rushTD = teamStat.RushTD - r.rushTD
		r.targets = teamStat.Targets - r.targets
		r.receptions = teamStat.Receptions - r.receptions
		r.recYards = teamStat.RecYards - r.recYards
		r.recTD = teamStat.RecTD - r.recTD

		wrShare, teShare := receivingSplit(recvByPosition)

		buckets := []struct {
			position models.Position
			build    func() *models.Projection
		}{
			{models.QB, func() *models.Projection { return qbFillProjection(r) }},
			{models.RB, func() *models.Projection { return rbFillProjection(r) }},
			{models.WR, func() *models.Projection { return wrteFillProjection(r, wrShare) }},
			{models.TE, func() *models.Projection { return wrteFillProjection(r, teShare) }},
		}

		for _, b := range buckets {
			proj := b.build()
			if !needsFill(proj) {
				continue
			}
			player, err := s.fillPlayerFor(ctx, players, team, b.position)
			if err != nil {
				return err
			}
			proj.ProjectionID = uuid.NewString()
			proj.PlayerID = player.PlayerID
			proj.Season = season
			proj.ScenarioID = scenarioID
			proj.IsFillPlayer = true
			proj.CreatedAt = time.Now()
			proj.UpdatedAt = time.Now()

			if err := rates.Derive(proj); err != nil {
				return err
			}
			scoring.Recompute(proj)

			if err := projections.Create(ctx, proj); err != nil {
				return err
			}
			created = append(created, proj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// deletePriorFills removes any existing fill player's projection for this
// (season, scenario) before residuals are recomputed.
func (s *Service) deletePriorFills(ctx context.Context, projections store.ProjectionRepository, byPosition map[models.Position][]*models.Player, season int, scenarioID *string) error {
	for _, players := range byPosition {
		for _, pl := range players {
			if !pl.IsFillPlayer {
				continue
			}
			existing, err := s.projectionFor(ctx, projections, pl.PlayerID, season, scenarioID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					continue
				}
				return err
			}
			if err := projections.Delete(ctx, existing.ProjectionID); err != nil {
				return err
			}
		}
	}
	return nil
}

// sumActuals totals the real (non-fill) players' stats in each category,
// and separately reports WR/TE receiving volume for the receiving split.
func (s *Service) sumActuals(ctx context.Context, projections store.ProjectionRepository, byPosition map[models.Position][]*models.Player, season int, scenarioID *string) (residuals, map[models.Position]float64, error) {
	var r residuals
	recvByPosition := map[models.Position]float64{}

	for pos, players := range byPosition {
		for _, pl := range players {
			if pl.IsFillPlayer {
				continue
			}
			proj, err := s.projectionFor(ctx, projections, pl.PlayerID, season, scenarioID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					continue
				}
				return residuals{}, nil, err
			}

			if pos == models.QB {
				r.passAttempts += f(proj.PassAttempts)
				r.passYards += f(proj.PassYards)
				r.passTD += f(proj.PassTD)
			}
			r.rushAttempts += f(proj.RushAttempts)
			r.rushYards += f(proj.RushYards)
			r.rushTD += f(proj.RushTD)
			if pos == models.RB || pos == models.WR || pos == models.TE {
				r.targets += f(proj.Targets)
				r.receptions += f(proj.Receptions)
				r.recYards += f(proj.RecYards)
				r.recTD += f(proj.RecTD)
			}
			if pos == models.WR || pos == models.TE {
				recvByPosition[pos] += f(proj.Targets)
			}
		}
	}
	return r, recvByPosition, nil
}

// receivingSplit divides the receiving residual between WR and TE
// proportional to each group's existing target share; with no existing
// receiving volume on either side it splits evenly. The spec names only
// "WR/TE get residual receiving share" without specifying the split ratio —
// this proportional rule is the Open Question decision recorded in
// DESIGN.md.
func receivingSplit(recvByPosition map[models.Position]float64) (wrShare, teShare float64) {
	total := recvByPosition[models.WR] + recvByPosition[models.TE]
	if total <= 0 {
		return 0.5, 0.5
	}
	return recvByPosition[models.WR] / total, recvByPosition[models.TE] / total
}

func qbFillProjection(r residuals) *models.Projection {
	return &models.Projection{
		PassAttempts: ptr(r.passAttempts),
		PassYards:    ptr(r.passYards),
		PassTD:       ptr(r.passTD),
	}
}

func rbFillProjection(r residuals) *models.Projection {
	return &models.Projection{
		RushAttempts: ptr(r.rushAttempts),
		RushYards:    ptr(r.rushYards),
		RushTD:       ptr(r.rushTD),
	}
}

func wrteFillProjection(r residuals, share float64) *models.Projection {
	return &models.Projection{
		Targets:    ptr(r.targets * share),
		Receptions: ptr(r.receptions * share),
		RecYards:   ptr(r.recYards * share),
		RecTD:      ptr(r.recTD * share),
	}
}

// needsFill reports whether any category on a candidate fill projection
// exceeds epsilon — a bucket with only negligible residual is skipped.
func needsFill(p *models.Projection) bool {
	for _, v := range []*float64{p.PassAttempts, p.PassYards, p.PassTD, p.RushAttempts, p.RushYards, p.RushTD, p.Targets, p.Receptions, p.RecYards, p.RecTD} {
		if v != nil && abs(*v) > epsilon {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// fillPlayerFor returns the team's existing fill player for position,
// creating one if none exists yet.
func (s *Service) fillPlayerFor(ctx context.Context, players store.PlayerRepository, team string, position models.Position) (*models.Player, error) {
	existing, err := players.ListByTeamPosition(ctx, team, position)
	if err != nil {
		return nil, err
	}
	for _, pl := range existing {
		if pl.IsFillPlayer {
			return pl, nil
		}
	}

	now := time.Now()
	player := &models.Player{
		PlayerID:     uuid.NewString(),
		Name:         fmt.Sprintf("%s Fill %s", team, position),
		Team:         team,
		Position:     position,
		Status:       models.StatusActive,
		IsFillPlayer: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := players.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Service) projectionFor(ctx context.Context, projections store.ProjectionRepository, playerID string, season int, scenarioID *string) (*models.Projection, error) {
	if scenarioID == nil {
		return projections.GetBaseline(ctx, playerID, season)
	}
	all, err := projections.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.Season == season && p.ScenarioID != nil && *p.ScenarioID == *scenarioID {
			return p, nil
		}
	}
	return nil, apperr.NotFound("no projection for player %s season %d scenario %v", playerID, season, scenarioID)
}
