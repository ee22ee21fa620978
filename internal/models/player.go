package models

import "time"

// Position is a skill-position code the engine projects.
type Position string

const (
	QB Position = "QB"
	RB Position = "RB"
	WR Position = "WR"
	TE Position = "TE"
)

type PlayerStatus string

const (
	StatusActive  PlayerStatus = "Active"
	StatusInjured PlayerStatus = "Injured"
	StatusRookie  PlayerStatus = "Rookie"
)

// Player is identity for a human athlete (or a synthetic fill player).
type Player struct {
	PlayerID           string       `json:"player_id" db:"player_id"`
	Name               string       `json:"name" db:"name"`
	Team               string       `json:"team" db:"team"`
	Position           Position     `json:"position" db:"position"`
	Status             PlayerStatus `json:"status" db:"status"`
	DepthChartPosition string       `json:"depth_chart_position,omitempty" db:"depth_chart_position"`
	IsRookie           bool         `json:"is_rookie" db:"is_rookie"`
	IsFillPlayer       bool         `json:"is_fill_player" db:"is_fill_player"`
	DraftRound         *int         `json:"draft_round,omitempty" db:"draft_round"`
	DraftPick          *int         `json:"draft_pick,omitempty" db:"draft_pick"`
	DraftTeam          *string      `json:"draft_team,omitempty" db:"draft_team"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// ReadyForBaseline reports whether the player has enough identity to run
// through the baseline builder rather than the rookie builder.
func (p *Player) ReadyForBaseline() bool {
	return p.Status != StatusRookie && !p.IsRookie
}
