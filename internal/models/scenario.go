package models

import "time"

// Scenario is a named grouping of projections for what-if analysis.
type Scenario struct {
	ScenarioID     string    `json:"scenario_id" db:"scenario_id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	IsBaseline     bool      `json:"is_baseline" db:"is_baseline"`
	BaseScenarioID *string   `json:"base_scenario_id,omitempty" db:"base_scenario_id"`
	Season         int       `json:"season" db:"season"`
	Parameters     []byte    `json:"parameters,omitempty" db:"parameters"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// StatOverride is the manual replacement of one stat on one projection. The
// original computed value is preserved so a delete can restore it exactly.
type StatOverride struct {
	OverrideID      string    `json:"override_id" db:"override_id"`
	PlayerID        string    `json:"player_id" db:"player_id"`
	ProjectionID    string    `json:"projection_id" db:"projection_id"`
	StatName        string    `json:"stat_name" db:"stat_name"`
	CalculatedValue float64   `json:"calculated_value" db:"calculated_value"`
	ManualValue     float64   `json:"manual_value" db:"manual_value"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// RookieProjectionTemplate maps position + draft-pick range to per-game
// rates used to seed a rookie's first projection.
type RookieProjectionTemplate struct {
	TemplateID   string  `json:"template_id" db:"template_id"`
	Position     Position `json:"position" db:"position"`
	DraftRound   int     `json:"draft_round" db:"draft_round"`
	DraftPickMin int     `json:"draft_pick_min" db:"draft_pick_min"`
	DraftPickMax int     `json:"draft_pick_max" db:"draft_pick_max"`

	Games     float64 `json:"games" db:"games"`
	SnapShare float64 `json:"snap_share" db:"snap_share"`

	// QB per-game rates
	PassAttempts   *float64 `json:"pass_attempts,omitempty" db:"pass_attempts"`
	CompPct        *float64 `json:"comp_pct,omitempty" db:"comp_pct"`
	YardsPerAtt    *float64 `json:"yards_per_att,omitempty" db:"yards_per_att"`
	PassTDRate     *float64 `json:"pass_td_rate,omitempty" db:"pass_td_rate"`
	IntRate        *float64 `json:"int_rate,omitempty" db:"int_rate"`
	RushAttPerGame *float64 `json:"rush_att_per_game,omitempty" db:"rush_att_per_game"`
	RushYardsPerAtt *float64 `json:"rush_yards_per_att,omitempty" db:"rush_yards_per_att"`
	RushTDPerGame  *float64 `json:"rush_td_per_game,omitempty" db:"rush_td_per_game"`

	// RB/WR/TE per-game rates
	TargetsPerGame   *float64 `json:"targets_per_game,omitempty" db:"targets_per_game"`
	CatchRate        *float64 `json:"catch_rate,omitempty" db:"catch_rate"`
	RecYardsPerCatch *float64 `json:"rec_yards_per_catch,omitempty" db:"rec_yards_per_catch"`
	RecTDPerCatch    *float64 `json:"rec_td_per_catch,omitempty" db:"rec_td_per_catch"`
	RushTDPerAtt     *float64 `json:"rush_td_per_att,omitempty" db:"rush_td_per_att"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Matches reports whether an overall draft pick falls in this template's range.
func (t *RookieProjectionTemplate) Matches(position Position, draftPick int) bool {
	return t.Position == position && draftPick >= t.DraftPickMin && draftPick <= t.DraftPickMax
}
