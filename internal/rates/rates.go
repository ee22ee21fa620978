// Package rates derives the efficiency ratios in a projection from its
// counting stats and enforces their domain clamps. A derived rate outside
// its domain is never silently clamped — it
// signals a programmer error upstream and surfaces as an apperr.Internal
// fault. The failing rate is not written; rates derived before it in the
// same call keep their new values.
package rates

import (
	"math"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

const eps = 1e-6

func ptr(v float64) *float64 { return &v }

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperr.Internal("rate %s derived to a non-finite value", name)
	}
	if v < lo-eps || v > hi+eps {
		return apperr.Internal("rate %s = %.6f outside domain [%.2f, %.2f]", name, v, lo, hi)
	}
	return nil
}

// Derive recomputes every rate identity from the projection's current
// counting stats. Identities whose inputs are absent (nil) or whose
// denominator is zero are skipped rather than treated as zero.
func Derive(p *models.Projection) error {
	if p.PassAttempts != nil && *p.PassAttempts != 0 {
		pa := *p.PassAttempts

		if p.Completions != nil {
			v := *p.Completions / pa
			if err := checkRange("comp_pct", v, 0, 1); err != nil {
				return err
			}
			p.CompPct = ptr(v)
		}
		if p.PassYards != nil {
			v := *p.PassYards / pa
			if err := checkRange("yards_per_att", v, 0, 15); err != nil {
				return err
			}
			p.YardsPerAtt = ptr(v)
		}
		if p.PassTD != nil {
			v := *p.PassTD / pa
			if err := checkRange("pass_td_rate", v, 0, 0.2); err != nil {
				return err
			}
			p.PassTDRate = ptr(v)
		}
		if p.Interceptions != nil {
			v := *p.Interceptions / pa
			if err := checkRange("int_rate", v, 0, 1); err != nil {
				return err
			}
			p.IntRate = ptr(v)
		}
		if p.Sacks != nil {
			denom := pa + *p.Sacks
			if denom != 0 {
				v := *p.Sacks / denom
				if err := checkRange("sack_rate", v, 0, 1); err != nil {
					return err
				}
				p.SackRate = ptr(v)
			}
		}
		if p.PassYards != nil && p.SackYards != nil {
			p.NetPassYards = ptr(*p.PassYards - *p.SackYards)
		}
		if p.NetPassYards != nil && p.Sacks != nil {
			denom := pa + *p.Sacks
			if denom != 0 {
				v := *p.NetPassYards / denom
				if err := checkRange("net_yards_per_att", v, 0, 15); err != nil {
					return err
				}
				p.NetYardsPerAtt = ptr(v)
			}
		}
	}

	if p.RushAttempts != nil && *p.RushAttempts != 0 {
		ra := *p.RushAttempts

		if p.RushYards != nil {
			v := *p.RushYards / ra
			if err := checkRange("yards_per_carry", v, 0, 10); err != nil {
				return err
			}
			p.YardsPerCarry = ptr(v)
		}
		if p.RushTD != nil {
			v := *p.RushTD / ra
			if err := checkRange("rush_td_rate", v, 0, 0.2); err != nil {
				return err
			}
			p.RushTDRate = ptr(v)
		}
	}

	if p.Fumbles != nil {
		denom := f(p.RushAttempts) + f(p.Receptions)
		if denom != 0 {
			v := *p.Fumbles / denom
			if err := checkRange("fumble_rate", v, 0, 1); err != nil {
				return err
			}
			p.FumbleRate = ptr(v)
		}
	}

	if p.Targets != nil && *p.Targets != 0 {
		tg := *p.Targets

		if p.Receptions != nil {
			v := *p.Receptions / tg
			if err := checkRange("catch_pct", v, 0, 1); err != nil {
				return err
			}
			p.CatchPct = ptr(v)
		}
		if p.RecYards != nil {
			v := *p.RecYards / tg
			if err := checkRange("yards_per_target", v, 0, 15); err != nil {
				return err
			}
			p.YardsPerTarget = ptr(v)
		}
		if p.RecTD != nil {
			v := *p.RecTD / tg
			if err := checkRange("rec_td_rate", v, 0, 0.2); err != nil {
				return err
			}
			p.RecTDRate = ptr(v)
		}
	}

	return nil
}

func f(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// DeriveShares computes tar_pct, rush_att_pct and pass_att_pct against the
// player's team context. Unlike the identity-table rates, shares are
// clamped into [0, 1] rather than rejected — a player's raw share can
// legitimately spill slightly outside the range when team totals are
// still being finalized upstream.
func DeriveShares(p *models.Projection, team *models.TeamStat) {
	if p.Targets != nil && team.Targets != 0 {
		p.TarPct = ptr(clamp01(*p.Targets / team.Targets))
	}
	if p.RushAttempts != nil && team.RushAttempts != 0 {
		p.RushAttPct = ptr(clamp01(*p.RushAttempts / team.RushAttempts))
	}
	if p.PassAttempts != nil && team.PassAttempts != 0 {
		p.PassAttPct = ptr(clamp01(*p.PassAttempts / team.PassAttempts))
	}
}
