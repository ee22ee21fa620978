// Package adjust implements the bounded multiplicative player adjuster: a
// named factor table applied to one projection's counting stats, clamped
// within declared ranges, preserving the rate identities recomputed
// afterward. Grounded on the multiplicative, clamped-adjustment pattern in
// internal/draft/value_calculator.go's CalculateAgeAdjustedValue.
package adjust

import (
	"context"
	"time"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rates"
	"github.com/fantasyprojections/engine/internal/scoring"
	"github.com/fantasyprojections/engine/internal/store"
)

// Factor is one of the named adjustment keys.
type Factor string

const (
	PassVolume  Factor = "pass_volume"
	TDRate      Factor = "td_rate"
	IntRate     Factor = "int_rate"
	RushVolume  Factor = "rush_volume"
	TargetShare Factor = "target_share"
	RushShare   Factor = "rush_share"
	SnapShare   Factor = "snap_share"
	ScoringRate Factor = "scoring_rate"
)

type bounds struct{ lo, hi float64 }

// ranges is the declared [lo, hi] per factor.
var ranges = map[Factor]bounds{
	PassVolume:  {0.5, 1.5},
	TDRate:      {0.5, 2.0},
	IntRate:     {0.5, 2.0},
	RushVolume:  {0.5, 1.5},
	SnapShare:   {0.5, 1.5},
	ScoringRate: {0.5, 2.0},
}

// shareFactors follow the Open Question resolution in DESIGN.md: a value
// <= 1 is an absolute share, a value > 1 is a multiplier on the existing
// share, capped at the table's multiplier ceiling of 1.5.
var shareFactors = map[Factor]bool{TargetShare: true, RushShare: true}

const shareMultiplierCeiling = 1.5

// validate reports AdjustmentOutOfRange for any factor outside its declared
// range, without mutating anything — every factor in a call is checked
// before any is applied.
func validate(factor Factor, v float64) error {
	if shareFactors[factor] {
		if v < 0 {
			return apperr.InvalidInput("AdjustmentOutOfRange: %s = %.4f must be >= 0", factor, v)
		}
		if v > 1 && v > shareMultiplierCeiling {
			return apperr.InvalidInput("AdjustmentOutOfRange: %s = %.4f exceeds multiplier ceiling %.2f", factor, v, shareMultiplierCeiling)
		}
		return nil
	}
	b, ok := ranges[factor]
	if !ok {
		return apperr.InvalidInput("unknown adjustment factor %q", factor)
	}
	if v < b.lo || v > b.hi {
		return apperr.InvalidInput("AdjustmentOutOfRange: %s = %.4f outside [%.2f, %.2f]", factor, v, b.lo, b.hi)
	}
	return nil
}

func mul(p **float64, factor float64) {
	if *p == nil {
		return
	}
	v := **p * factor
	*p = &v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// shareFactorScale resolves a share-keyed adjustment value against the
// projection's current recorded share, returning the multiplicative factor
// to apply to the volume stat and its counting siblings, and the new share
// value to record (nil if there was no prior recorded share to update).
func shareFactorScale(currentShare *float64, v float64) (factor float64, newShare *float64) {
	if v <= 1 {
		if currentShare == nil || *currentShare <= 0 {
			// No recorded share to scale against — treat v as the new
			// share outright and leave the volume/counting stats as-is
			// (factor 1) since there is nothing to ratio against.
			nv := v
			return 1, &nv
		}
		factor = v / *currentShare
		nv := v
		return factor, &nv
	}
	factor = v
	if currentShare == nil {
		return factor, nil
	}
	nv := clamp01(*currentShare * v)
	return factor, &nv
}

// Service applies player-scope adjustments and persists the result.
type Service struct {
	projections store.ProjectionRepository
	db          *store.Store
}

func NewService(projections store.ProjectionRepository, db *store.Store) *Service {
	return &Service{projections: projections, db: db}
}

// Apply validates every factor in factors before mutating anything — a
// single out-of-range factor fails the whole call and leaves the
// projection untouched.
func (s *Service) Apply(ctx context.Context, projectionID string, factors map[Factor]float64) (*models.Projection, error) {
	for factor, v := range factors {
		if err := validate(factor, v); err != nil {
			return nil, err
		}
	}

	p, err := s.projections.Get(ctx, projectionID)
	if err != nil {
		return nil, err
	}
	prevUpdatedAt := p.UpdatedAt
	ApplyFactors(p, factors)

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
	return p, nil
}

// ApplyFactors is the pure mutation at the heart of Apply, exported so the
// team adjuster can reuse the same per-factor semantics when it
// materializes a pre-adjustment snapshot and scales from it.
func ApplyFactors(p *models.Projection, factors map[Factor]float64) {
	for factor, v := range factors {
		switch factor {
		case PassVolume:
			mul(&p.PassAttempts, v)
			mul(&p.Completions, v)
			mul(&p.PassYards, v)
		case RushVolume:
			mul(&p.RushAttempts, v)
			mul(&p.RushYards, v)
		case TDRate:
			mul(&p.PassTD, v)
			mul(&p.RecTD, v)
		case IntRate:
			mul(&p.Interceptions, v)
		case ScoringRate:
			mul(&p.PassTD, v)
			mul(&p.RushTD, v)
			mul(&p.RecTD, v)
		case SnapShare:
			if p.SnapShare != nil {
				nv := clamp01(*p.SnapShare * v)
				p.SnapShare = &nv
			}
		case TargetShare:
			factor, newShare := shareFactorScale(p.TargetShare, v)
			mul(&p.Targets, factor)
			mul(&p.Receptions, factor)
			mul(&p.RecYards, factor)
			mul(&p.RecTD, factor)
			if newShare != nil {
				p.TargetShare = newShare
			}
		case RushShare:
			factor, newShare := shareFactorScale(p.RushShare, v)
			mul(&p.RushAttempts, factor)
			mul(&p.RushYards, factor)
			mul(&p.RushTD, factor)
			if newShare != nil {
				p.RushShare = newShare
			}
		}
	}
}
