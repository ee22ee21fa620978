// Package scoring is a pure function mapping a projection's stat vector to
// fantasy points, grounded on the half/standard/ppr property trio in the
// original Projection model.
package scoring

import "github.com/fantasyprojections/engine/internal/models"

// Rule selects the reception weight applied to the shared scoring formula.
type Rule int

const (
	HalfPPR Rule = iota
	Standard
	FullPPR
)

func receptionWeight(rule Rule) float64 {
	switch rule {
	case Standard:
		return 0.0
	case FullPPR:
		return 1.0
	default:
		return 0.5
	}
}

func val(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Points computes fantasy points for a projection under the given rule.
// It prefers net_pass_yards/net_rush_yards when present.
func Points(p *models.Projection, rule Rule) float64 {
	points := 0.0

	passYards := p.NetPassYards
	if passYards == nil {
		passYards = p.PassYards
	}
	points += val(passYards) * 0.04
	points += val(p.PassTD) * 4.0
	points -= val(p.Interceptions) * 2.0

	rushYards := p.NetRushYards
	if rushYards == nil {
		rushYards = p.RushYards
	}
	points += val(rushYards) * 0.1
	points += val(p.RushTD) * 6.0
	points -= val(p.Fumbles) * 2.0

	points += val(p.Receptions) * receptionWeight(rule)
	points += val(p.RecYards) * 0.1
	points += val(p.RecTD) * 6.0

	return points
}

// HalfPPRPoints is the fixed scoring rule used as the projection's cached
// half_ppr total — the only rule the rest of the engine persists.
func HalfPPRPoints(p *models.Projection) float64 {
	return Points(p, HalfPPR)
}

// Recompute writes the Half-PPR total back onto the projection.
func Recompute(p *models.Projection) {
	p.HalfPPR = HalfPPRPoints(p)
}
