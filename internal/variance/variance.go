// Package variance implements the variance engine: per-stat confidence
// intervals from a coefficient-of-variation model (empirical when enough
// game logs exist, a position default otherwise), a correlation-aware
// fantasy-point variance blend, and the low/median/high range product.
// Grounded verbatim on
// original_source/backend/services/projection_variance_service.py — the CV
// tables, confidence z-scores, and correlation matrices below are that
// file's numbers, carried over unchanged. Uses gonum.org/v1/gonum/stat for
// the empirical mean/stddev pass, the same package the
// TheManhattanProject-driver_pricing pack repo uses for its risk model.
package variance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	gonumstat "gonum.org/v1/gonum/stat"

	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rates"
	"github.com/fantasyprojections/engine/internal/scoring"
	"github.com/fantasyprojections/engine/internal/statspec"
	"github.com/fantasyprojections/engine/internal/store"
)

const defaultMinGamesEmpirical = 8

// defaultCV is the position/stat coefficient-of-variation table used when a
// player lacks enough game-level history.
var defaultCV = map[models.Position]map[string]float64{
	models.QB: {
		"pass_attempts": 0.12, "completions": 0.15, "pass_yards": 0.18, "pass_td": 0.25,
		"interceptions": 0.35, "rush_attempts": 0.30, "rush_yards": 0.35, "rush_td": 0.50,
	},
	models.RB: {
		"rush_attempts": 0.18, "rush_yards": 0.22, "rush_td": 0.40,
		"targets": 0.25, "receptions": 0.28, "rec_yards": 0.32, "rec_td": 0.45,
	},
	models.WR: {
		"targets": 0.20, "receptions": 0.25, "rec_yards": 0.30, "rec_td": 0.45,
		"rush_attempts": 0.50, "rush_yards": 0.50, "rush_td": 0.70,
	},
	models.TE: {
		"targets": 0.25, "receptions": 0.30, "rec_yards": 0.35, "rec_td": 0.50,
		"rush_attempts": 0.80, "rush_yards": 0.80, "rush_td": 0.95,
	},
}

const fallbackCoef = 0.3

var confidenceZ = map[float64]float64{
	0.50: 0.674, 0.80: 1.282, 0.90: 1.645, 0.95: 1.960, 0.99: 2.576,
}

// fpWeights are the half-PPR scoring weights that drive the fantasy-point
// variance blend — the coefficients internal/scoring applies, less the
// fumble penalty (fumbles are not among the blended stats), kept as
// a separate table here because the blend also needs the pairwise
// correlations, which scoring has no use for.
var fpWeights = map[string]float64{
	"pass_yards": 0.04, "pass_td": 4.0, "interceptions": -2.0,
	"rush_yards": 0.1, "rush_td": 6.0,
	"receptions": 0.5, "rec_yards": 0.1, "rec_td": 6.0,
}

var correlations = map[models.Position]map[[2]string]float64{
	models.QB: {
		{"pass_attempts", "completions"}:   0.97,
		{"pass_attempts", "pass_yards"}:    0.92,
		{"pass_attempts", "pass_td"}:       0.75,
		{"pass_attempts", "interceptions"}: 0.65,
		{"completions", "pass_yards"}:      0.94,
		{"completions", "pass_td"}:         0.78,
		{"pass_yards", "pass_td"}:          0.80,
		{"rush_yards", "rush_td"}:          0.60,
		{"rush_attempts", "rush_yards"}:    0.95,
		{"rush_attempts", "rush_td"}:       0.55,
	},
	models.RB: {
		{"rush_attempts", "rush_yards"}: 0.98,
		{"rush_attempts", "rush_td"}:    0.75,
		{"rush_yards", "rush_td"}:       0.70,
		{"targets", "receptions"}:       0.95,
		{"receptions", "rec_yards"}:     0.97,
		{"receptions", "rec_td"}:        0.60,
		{"rec_yards", "rec_td"}:         0.65,
		{"rush_attempts", "targets"}:    -0.20,
		{"rush_yards", "rec_yards"}:     -0.15,
	},
	models.WR: {
		{"targets", "receptions"}:       0.97,
		{"targets", "rec_yards"}:        0.92,
		{"targets", "rec_td"}:           0.75,
		{"receptions", "rec_yards"}:     0.95,
		{"receptions", "rec_td"}:        0.70,
		{"rec_yards", "rec_td"}:         0.75,
		{"rush_attempts", "rush_yards"}: 0.90,
		{"rush_yards", "rush_td"}:       0.60,
	},
}

func init() {
	correlations[models.TE] = correlations[models.WR]
}

func corrLookup(position models.Position, a, b string) float64 {
	table := correlations[position]
	if table == nil {
		return 0
	}
	if v, ok := table[[2]string{a, b}]; ok {
		return v
	}
	if v, ok := table[[2]string{b, a}]; ok {
		return v
	}
	return 0
}

func statFields(position models.Position) []string {
	switch position {
	case models.QB:
		return []string{"pass_attempts", "completions", "pass_yards", "pass_td", "interceptions", "rush_attempts", "rush_yards", "rush_td"}
	case models.RB:
		return []string{"rush_attempts", "rush_yards", "rush_td", "targets", "receptions", "rec_yards", "rec_td"}
	case models.WR, models.TE:
		return []string{"targets", "receptions", "rec_yards", "rec_td", "rush_attempts", "rush_yards", "rush_td"}
	}
	return nil
}

// Interval is one confidence-level's lower/upper bound.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// StatVariance is the variance model output for one stat (or half_ppr).
type StatVariance struct {
	Mean      float64             `json:"mean"`
	StdDev    float64             `json:"std_dev"`
	CoefVar   float64             `json:"coef_var"`
	Intervals map[string]Interval `json:"intervals"`
}

// RangeResult is the low/median/high range product.
type RangeResult struct {
	ProjectionID string             `json:"projection_id"`
	BaseHalfPPR  float64            `json:"base_half_ppr"`
	Low          map[string]float64 `json:"low"`
	Median       map[string]float64 `json:"median"`
	High         map[string]float64 `json:"high"`
	ScenarioIDs  map[string]string  `json:"scenario_ids,omitempty"`
}

func ptr(v float64) *float64 { return &v }

// Service computes variance models and the range product against the store.
type Service struct {
	projections       store.ProjectionRepository
	players           store.PlayerRepository
	gameLogs          store.GameLogRepository
	scenarios         store.ScenarioRepository
	db                *store.Store
	minGamesEmpirical int
}

func NewService(projections store.ProjectionRepository, players store.PlayerRepository, gameLogs store.GameLogRepository, scenarios store.ScenarioRepository, db *store.Store, minGamesEmpirical int) *Service {
	if minGamesEmpirical <= 0 {
		minGamesEmpirical = defaultMinGamesEmpirical
	}
	return &Service{
		projections: projections, players: players, gameLogs: gameLogs,
		scenarios: scenarios, db: db, minGamesEmpirical: minGamesEmpirical,
	}
}

// Calculate returns the variance model for every relevant stat on a
// projection, plus a "half_ppr" entry for the correlation-aware fantasy
// point blend.
func (s *Service) Calculate(ctx context.Context, projectionID string) (map[string]StatVariance, error) {
	proj, err := s.projections.Get(ctx, projectionID)
	if err != nil {
		return nil, err
	}
	player, err := s.players.Get(ctx, proj.PlayerID)
	if err != nil {
		return nil, err
	}

	empirical := s.empiricalCV(ctx, player, proj.Season)
	defaults := defaultCV[player.Position]

	result := make(map[string]StatVariance)
	for _, name := range statFields(player.Position) {
		entry, ok := statspec.Lookup(name)
		if !ok {
			continue
		}
		valuePtr := entry.Get(proj)
		if valuePtr == nil || *valuePtr <= 0 {
			continue
		}
		value := *valuePtr

		defaultCoef, ok := defaults[name]
		if !ok {
			defaultCoef = fallbackCoef
		}
		coef, ok := empirical[name]
		if !ok {
			coef = defaultCoef
		}

		std := value * coef
		if proj.Games > 0 {
			std = std / math.Sqrt(float64(proj.Games)) * math.Sqrt(17.0)
		}

		result[name] = StatVariance{
			Mean:      value,
			StdDev:    std,
			CoefVar:   coef,
			Intervals: computeIntervals(value, std),
		}
	}

	result["half_ppr"] = s.fantasyPointVariance(proj, result, player.Position)
	return result, nil
}

func computeIntervals(value, std float64) map[string]Interval {
	intervals := make(map[string]Interval, len(confidenceZ))
	for level, z := range confidenceZ {
		lower := math.Max(0, value-z*std)
		upper := value + z*std
		intervals[fmt.Sprintf("%.2f", level)] = Interval{Lower: lower, Upper: upper}
	}
	return intervals
}

// fantasyPointVariance computes Var(FP) = Σ w²σ² + 2 Σ wᵢwⱼρᵢⱼσᵢσⱼ over the
// scoring stats present in statVariances.
func (s *Service) fantasyPointVariance(proj *models.Projection, statVariances map[string]StatVariance, position models.Position) StatVariance {
	fpBase := proj.HalfPPR
	varianceSum := 0.0

	keys := make([]string, 0, len(fpWeights))
	for k := range fpWeights {
		keys = append(keys, k)
	}

	for _, stat1 := range keys {
		sv1, ok := statVariances[stat1]
		if !ok {
			continue
		}
		w1 := fpWeights[stat1]
		varianceSum += w1 * w1 * sv1.StdDev * sv1.StdDev

		for _, stat2 := range keys {
			if stat1 >= stat2 {
				continue
			}
			sv2, ok := statVariances[stat2]
			if !ok {
				continue
			}
			w2 := fpWeights[stat2]
			corr := corrLookup(position, stat1, stat2)
			varianceSum += 2 * w1 * w2 * corr * sv1.StdDev * sv2.StdDev
		}
	}

	fpStd := math.Sqrt(math.Max(0, varianceSum))
	coefVar := 0.0
	if fpBase != 0 {
		coefVar = fpStd / fpBase
	}
	return StatVariance{Mean: fpBase, StdDev: fpStd, CoefVar: coefVar, Intervals: computeIntervals(fpBase, fpStd)}
}

// empiricalCV builds a per-stat coefficient of variation from up to three
// prior seasons of game logs, for any stat with at least minGamesEmpirical
// observations. Stats without enough history are simply absent from the
// returned map so Calculate falls back to the position default.
func (s *Service) empiricalCV(ctx context.Context, player *models.Player, season int) map[string]float64 {
	if s.gameLogs == nil {
		return nil
	}
	games, err := s.gameLogs.RecentGames(ctx, player.PlayerID, season-3, season)
	if err != nil || len(games) == 0 {
		return nil
	}

	samples := make(map[string][]float64)
	for _, g := range games {
		for _, name := range statFields(player.Position) {
			if v, ok := g.Stats[name]; ok {
				samples[name] = append(samples[name], v)
			}
		}
	}

	model := make(map[string]float64)
	for name, vs := range samples {
		if len(vs) < s.minGamesEmpirical {
			continue
		}
		mean := gonumstat.Mean(vs, nil)
		if mean < 1 {
			mean = 1
		}
		sd := gonumstat.StdDev(vs, nil)
		model[name] = sd / mean
	}
	return model
}

// closestConfidence snaps an arbitrary confidence value to the nearest
// supported level in confidenceZ.
func closestConfidence(requested float64) float64 {
	best, bestDiff := 0.0, math.MaxFloat64
	for level := range confidenceZ {
		if diff := math.Abs(level - requested); diff < bestDiff {
			best, bestDiff = level, diff
		}
	}
	return best
}

// Range computes the low/median/high projection range at the requested
// confidence level, and optionally materializes it as two new scenarios.
func (s *Service) Range(ctx context.Context, projectionID string, confidence float64, materializeScenarios bool) (*RangeResult, error) {
	proj, err := s.projections.Get(ctx, projectionID)
	if err != nil {
		return nil, err
	}
	player, err := s.players.Get(ctx, proj.PlayerID)
	if err != nil {
		return nil, err
	}
	variances, err := s.Calculate(ctx, projectionID)
	if err != nil {
		return nil, err
	}

	level := closestConfidence(confidence)
	key := fmt.Sprintf("%.2f", level)

	result := &RangeResult{
		ProjectionID: projectionID,
		BaseHalfPPR:  proj.HalfPPR,
		Low:          make(map[string]float64),
		Median:       make(map[string]float64),
		High:         make(map[string]float64),
	}
	for _, name := range statFields(player.Position) {
		sv, ok := variances[name]
		if !ok {
			continue
		}
		interval, ok := sv.Intervals[key]
		if !ok {
			continue
		}
		result.Low[name] = interval.Lower
		result.Median[name] = sv.Mean
		result.High[name] = interval.Upper
	}
	if fp, ok := variances["half_ppr"]; ok {
		if interval, ok := fp.Intervals[key]; ok {
			result.Low["half_ppr"] = interval.Lower
			result.Median["half_ppr"] = proj.HalfPPR
			result.High["half_ppr"] = interval.Upper
		}
	}

	if materializeScenarios {
		ids, err := s.materializeRangeScenarios(ctx, proj, player, result, confidence)
		if err != nil {
			return nil, err
		}
		result.ScenarioIDs = ids
	}
	return result, nil
}

// materializeRangeScenarios persists a "<player> Low"/"<player> High"
// scenario for the range, each containing a cloned projection with that
// bound's values populated.
func (s *Service) materializeRangeScenarios(ctx context.Context, proj *models.Projection, player *models.Player, rng *RangeResult, confidence float64) (map[string]string, error) {
	bounds := []struct {
		key, label string
		values     map[string]float64
	}{
		{"low", "Low", rng.Low},
		{"high", "High", rng.High},
	}

	ids := make(map[string]string, len(bounds))
	err := s.db.WithTx(ctx, func(q store.DBTX) error {
		scenarios := s.scenarios.WithTx(q)
		projections := s.projections.WithTx(q)

		for _, b := range bounds {
			description := fmt.Sprintf("%.0f%% confidence interval %s bound", confidence*100, b.key)
			sc := &models.Scenario{
				ScenarioID:  uuid.NewString(),
				Name:        fmt.Sprintf("%s %s", player.Name, b.label),
				Description: &description,
				Season:      proj.Season,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			if err := scenarios.Create(ctx, sc); err != nil {
				return err
			}

			rp := proj.Clone(uuid.NewString())
			rp.ScenarioID = &sc.ScenarioID
			rp.CreatedAt = time.Now()
			rp.UpdatedAt = time.Now()
			for name, v := range b.values {
				if name == "half_ppr" {
					rp.HalfPPR = v
					continue
				}
				entry, ok := statspec.Lookup(name)
				if !ok {
					continue
				}
				entry.Set(rp, ptr(v))
			}
			if err := rates.Derive(rp); err != nil {
				return err
			}
			scoring.Recompute(rp)
			if err := projections.Create(ctx, rp); err != nil {
				return err
			}
			ids[b.key] = sc.ScenarioID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
