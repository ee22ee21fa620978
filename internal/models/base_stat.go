package models

import "time"

// BaseStat is one historical stat observation for a player: a season total,
// a week total, or one of the two synthetic rows ("games", "half_ppr").
type BaseStat struct {
	StatID    string    `json:"stat_id" db:"stat_id"`
	PlayerID  string    `json:"player_id" db:"player_id"`
	Season    int       `json:"season" db:"season"`
	Week      *int      `json:"week,omitempty" db:"week"`
	StatName  string    `json:"stat_name" db:"stat_name"`
	Value     float64   `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// GameLog is one game-by-game observation used by the variance engine to
// derive empirical coefficients of variation. It mirrors the position-
// specific stat keys stored in the original per-game JSON blob.
type GameLog struct {
	GameStatID string             `json:"game_stat_id" db:"game_stat_id"`
	PlayerID   string             `json:"player_id" db:"player_id"`
	Season     int                `json:"season" db:"season"`
	Week       int                `json:"week" db:"week"`
	Stats      map[string]float64 `json:"stats" db:"stats"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
}
