package models

import "time"

// Projection is the forward-looking stat vector for (player, season, scenario).
// scenario_id == nil sentinels the global baseline — callers must handle that
// NULL specially rather than treating it as a reserved scenario row.
//
// Most stat fields are nullable: a QB has no catch_pct, a WR has no comp_pct.
// Absence is a first-class value, not a zero.
type Projection struct {
	ProjectionID string  `json:"projection_id" db:"projection_id"`
	PlayerID     string  `json:"player_id" db:"player_id"`
	ScenarioID   *string `json:"scenario_id,omitempty" db:"scenario_id"`
	Season       int     `json:"season" db:"season"`
	Games        int     `json:"games" db:"games"`

	HalfPPR float64 `json:"half_ppr" db:"half_ppr"`

	// Passing (QB)
	PassAttempts  *float64 `json:"pass_attempts,omitempty" db:"pass_attempts"`
	Completions   *float64 `json:"completions,omitempty" db:"completions"`
	PassYards     *float64 `json:"pass_yards,omitempty" db:"pass_yards"`
	PassTD        *float64 `json:"pass_td,omitempty" db:"pass_td"`
	Interceptions *float64 `json:"interceptions,omitempty" db:"interceptions"`

	GrossPassYards *float64 `json:"gross_pass_yards,omitempty" db:"gross_pass_yards"`
	Sacks          *float64 `json:"sacks,omitempty" db:"sacks"`
	SackYards      *float64 `json:"sack_yards,omitempty" db:"sack_yards"`
	NetPassYards   *float64 `json:"net_pass_yards,omitempty" db:"net_pass_yards"`
	PassTDRate     *float64 `json:"pass_td_rate,omitempty" db:"pass_td_rate"`
	IntRate        *float64 `json:"int_rate,omitempty" db:"int_rate"`
	SackRate       *float64 `json:"sack_rate,omitempty" db:"sack_rate"`

	// Rushing (all positions)
	RushAttempts *float64 `json:"rush_attempts,omitempty" db:"rush_attempts"`
	RushYards    *float64 `json:"rush_yards,omitempty" db:"rush_yards"`
	RushTD       *float64 `json:"rush_td,omitempty" db:"rush_td"`

	GrossRushYards *float64 `json:"gross_rush_yards,omitempty" db:"gross_rush_yards"`
	Fumbles        *float64 `json:"fumbles,omitempty" db:"fumbles"`
	FumbleRate     *float64 `json:"fumble_rate,omitempty" db:"fumble_rate"`
	NetRushYards   *float64 `json:"net_rush_yards,omitempty" db:"net_rush_yards"`
	RushTDRate     *float64 `json:"rush_td_rate,omitempty" db:"rush_td_rate"`

	// Receiving (RB, WR, TE)
	Targets    *float64 `json:"targets,omitempty" db:"targets"`
	Receptions *float64 `json:"receptions,omitempty" db:"receptions"`
	RecYards   *float64 `json:"rec_yards,omitempty" db:"rec_yards"`
	RecTD      *float64 `json:"rec_td,omitempty" db:"rec_td"`

	// Usage shares
	SnapShare    *float64 `json:"snap_share,omitempty" db:"snap_share"`
	TargetShare  *float64 `json:"target_share,omitempty" db:"target_share"`
	RushShare    *float64 `json:"rush_share,omitempty" db:"rush_share"`
	RedzoneShare *float64 `json:"redzone_share,omitempty" db:"redzone_share"`

	// Efficiency
	PassAttPct       *float64 `json:"pass_att_pct,omitempty" db:"pass_att_pct"`
	CompPct          *float64 `json:"comp_pct,omitempty" db:"comp_pct"`
	YardsPerAtt      *float64 `json:"yards_per_att,omitempty" db:"yards_per_att"`
	NetYardsPerAtt   *float64 `json:"net_yards_per_att,omitempty" db:"net_yards_per_att"`
	RushAttPct       *float64 `json:"rush_att_pct,omitempty" db:"rush_att_pct"`
	YardsPerCarry    *float64 `json:"yards_per_carry,omitempty" db:"yards_per_carry"`
	NetYardsPerCarry *float64 `json:"net_yards_per_carry,omitempty" db:"net_yards_per_carry"`
	TarPct           *float64 `json:"tar_pct,omitempty" db:"tar_pct"`
	CatchPct         *float64 `json:"catch_pct,omitempty" db:"catch_pct"`
	YardsPerTarget   *float64 `json:"yards_per_target,omitempty" db:"yards_per_target"`
	RecTDRate        *float64 `json:"rec_td_rate,omitempty" db:"rec_td_rate"`

	HasOverrides bool `json:"has_overrides" db:"has_overrides"`
	IsFillPlayer bool `json:"is_fill_player" db:"is_fill_player"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func f(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 { return &v }

// Clone returns a copy of the projection with a fresh ID, suitable for
// scenario cloning and variance range materialization. The copy's stat
// pointer fields point at the same values as p's; setters replace pointers
// rather than writing through them, so the two stay independent.
func (p *Projection) Clone(newID string) *Projection {
	cp := *p
	cp.ProjectionID = newID
	return &cp
}

// IsBaseline reports whether the projection belongs to the global baseline
// (scenario_id is NULL).
func (p *Projection) IsBaseline() bool {
	return p.ScenarioID == nil
}
