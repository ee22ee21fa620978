// Package baseline implements the baseline projection builder: prior season
// stats plus team context produce the (player, season, scenario = NULL)
// Projection every other component mutates, grounded on original_source's
// TeamStat.from_dict column mapping for team-context inputs.
package baseline

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

// Builder constructs baseline Projections. It depends only on store
// interfaces, never a concrete *sql.DB, following the constructor
// injection convention used throughout this package tree.
type Builder struct {
	players     store.PlayerRepository
	baseStats   store.BaseStatRepository
	teamStats   store.TeamStatRepository
	projections store.ProjectionRepository
	db          *store.Store
}

func NewBuilder(players store.PlayerRepository, baseStats store.BaseStatRepository, teamStats store.TeamStatRepository, projections store.ProjectionRepository, db *store.Store) *Builder {
	return &Builder{players: players, baseStats: baseStats, teamStats: teamStats, projections: projections, db: db}
}

// teamCategory maps a volume stat to the TeamStat field whose year-over-year
// ratio scales it: the category matches the stat. Stats with no direct
// team-tracked analogue (interceptions, sacks,
// sack_yards, fumbles) ride the category of the volume stat that drives
// their opportunity (passing attempts for the passing-adjacent ones,
// rushing attempts for fumbles).
func teamCategory(stat string, t *models.TeamStat) float64 {
	switch stat {
	case "pass_attempts", "completions", "interceptions", "sacks", "sack_yards":
		return t.PassAttempts
	case "pass_yards":
		return t.PassYards
	case "pass_td":
		return t.PassTD
	case "rush_attempts", "fumbles":
		return t.RushAttempts
	case "rush_yards":
		return t.RushYards
	case "rush_td":
		return t.RushTD
	case "targets":
		return t.Targets
	case "receptions":
		return t.Receptions
	case "rec_yards":
		return t.RecYards
	case "rec_td":
		return t.RecTD
	default:
		return 0
	}
}

func positionFields(position models.Position) []string {
	switch position {
	case models.QB:
		return []string{"pass_attempts", "completions", "pass_yards", "pass_td", "interceptions",
			"sacks", "sack_yards", "rush_attempts", "rush_yards", "rush_td", "fumbles"}
	case models.RB:
		return []string{"rush_attempts", "rush_yards", "rush_td", "fumbles",
			"targets", "receptions", "rec_yards", "rec_td"}
	case models.WR, models.TE:
		return []string{"targets", "receptions", "rec_yards", "rec_td",
			"rush_attempts", "rush_yards", "rush_td", "fumbles"}
	default:
		return nil
	}
}

// Build runs the full baseline algorithm for (playerID, season) and
// persists the result as the global baseline (scenario_id = NULL).
func (b *Builder) Build(ctx context.Context, playerID string, season int) (*models.Projection, error) {
	player, err := b.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !player.ReadyForBaseline() {
		return nil, apperr.Precondition("player %s is a rookie; build with the rookie builder instead", playerID)
	}

	priorStats, err := b.baseStats.SeasonStats(ctx, playerID, season-1)
	if err != nil {
		return nil, err
	}
	twoYearStats, err := b.baseStats.SeasonStats(ctx, playerID, season-2)
	if err != nil {
		return nil, err
	}

	primary := priorStats
	secondary := map[string]float64(nil)
	if len(primary) == 0 {
		primary = twoYearStats
	} else if len(twoYearStats) > 0 {
		secondary = twoYearStats
	}
	if len(primary) == 0 {
		return nil, apperr.Precondition("NotEnoughHistory: player %s has no stats for season %d or %d", playerID, season-1, season-2)
	}

	teamThisSeason, err := b.teamStats.Get(ctx, player.Team, season)
	if err != nil {
		return nil, apperr.Precondition("TeamContextMissing: %v", err)
	}
	teamLastSeason, err := b.teamStats.Get(ctx, player.Team, season-1)
	if err != nil {
		// Without a prior-season team row there is nothing to scale
		// against; fall back to the current season's own totals so the
		// ratio is a neutral 1.0 rather than failing the whole build.
		teamLastSeason = teamThisSeason
	}

	proj := &models.Projection{
		ProjectionID: uuid.NewString(),
		PlayerID:     playerID,
		ScenarioID:   nil,
		Season:       season,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	games := primary["games"]
	if games <= 0 {
		games = 17
	}
	if games <= 12 {
		proj.Games = 16
	} else {
		proj.Games = 17
	}

	const wRecent, wPrior = 0.65, 0.35
	for _, stat := range positionFields(player.Position) {
		v, ok := primary[stat]
		if !ok {
			continue
		}
		if secondary != nil {
			if v2, ok2 := secondary[stat]; ok2 {
				v = v*wRecent + v2*wPrior
			}
		}

		thisCat := teamCategory(stat, teamThisSeason)
		lastCat := teamCategory(stat, teamLastSeason)
		if lastCat != 0 {
			v = v * (thisCat / lastCat)
		}
		setVolumeField(proj, stat, v)
	}

	if err := rates.Derive(proj); err != nil {
		return nil, err
	}
	rates.DeriveShares(proj, teamThisSeason)
	scoring.Recompute(proj)

	if err := b.db.WithTx(ctx, func(q store.DBTX) error {
		return b.projections.WithTx(q).Create(ctx, proj)
	}); err != nil {
		return nil, err
	}
	return proj, nil
}

func setVolumeField(p *models.Projection, stat string, v float64) {
	switch stat {
	case "pass_attempts":
		p.PassAttempts = &v
	case "completions":
		p.Completions = &v
	case "pass_yards":
		p.PassYards = &v
	case "pass_td":
		p.PassTD = &v
	case "interceptions":
		p.Interceptions = &v
	case "sacks":
		p.Sacks = &v
	case "sack_yards":
		p.SackYards = &v
	case "rush_attempts":
		p.RushAttempts = &v
	case "rush_yards":
		p.RushYards = &v
	case "rush_td":
		p.RushTD = &v
	case "fumbles":
		p.Fumbles = &v
	case "targets":
		p.Targets = &v
	case "receptions":
		p.Receptions = &v
	case "rec_yards":
		p.RecYards = &v
	case "rec_td":
		p.RecTD = &v
	}
}
