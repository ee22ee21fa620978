// Package export produces a flat record set of projections, given filters,
// suitable for CSV or JSON encoding with every relevant stat field present.
// A fixed-field flat writer needs no reflection-based mapping library, so
// this package uses encoding/csv and encoding/json directly rather than a
// third-party CSV package like FranciscoContreras-Grid-Iron_Mind's
// gocarina/gocsv, which solves struct-tag based *input* parsing, a
// different problem.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/store"
)

// Record is one flat row: a projection joined with its player's identity
// fields, every stat field present (nil for CSV renders as "", nil for
// JSON renders as null).
type Record struct {
	ProjectionID string  `json:"projection_id"`
	PlayerID     string  `json:"player_id"`
	PlayerName   string  `json:"player_name"`
	Team         string  `json:"team"`
	Position     string  `json:"position"`
	Season       int     `json:"season"`
	ScenarioID   *string `json:"scenario_id"`
	Games        int     `json:"games"`
	HalfPPR      float64 `json:"half_ppr"`

	PassAttempts  *float64 `json:"pass_attempts"`
	Completions   *float64 `json:"completions"`
	PassYards     *float64 `json:"pass_yards"`
	PassTD        *float64 `json:"pass_td"`
	Interceptions *float64 `json:"interceptions"`

	RushAttempts *float64 `json:"rush_attempts"`
	RushYards    *float64 `json:"rush_yards"`
	RushTD       *float64 `json:"rush_td"`

	Targets    *float64 `json:"targets"`
	Receptions *float64 `json:"receptions"`
	RecYards   *float64 `json:"rec_yards"`
	RecTD      *float64 `json:"rec_td"`

	SnapShare    *float64 `json:"snap_share"`
	TargetShare  *float64 `json:"target_share"`
	RushShare    *float64 `json:"rush_share"`
	RedzoneShare *float64 `json:"redzone_share"`

	CompPct        *float64 `json:"comp_pct"`
	YardsPerAtt    *float64 `json:"yards_per_att"`
	YardsPerCarry  *float64 `json:"yards_per_carry"`
	CatchPct       *float64 `json:"catch_pct"`
	YardsPerTarget *float64 `json:"yards_per_target"`

	HasOverrides bool `json:"has_overrides"`
	IsFillPlayer bool `json:"is_fill_player"`
}

// columns is the fixed CSV column order, also used as the header row.
var columns = []string{
	"projection_id", "player_id", "player_name", "team", "position", "season",
	"scenario_id", "games", "half_ppr",
	"pass_attempts", "completions", "pass_yards", "pass_td", "interceptions",
	"rush_attempts", "rush_yards", "rush_td",
	"targets", "receptions", "rec_yards", "rec_td",
	"snap_share", "target_share", "rush_share", "redzone_share",
	"comp_pct", "yards_per_att", "yards_per_carry", "catch_pct", "yards_per_target",
	"has_overrides", "is_fill_player",
}

func str(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// row renders the record as a CSV row matching the columns order.
func (r Record) row() []string {
	scenarioID := ""
	if r.ScenarioID != nil {
		scenarioID = *r.ScenarioID
	}
	return []string{
		r.ProjectionID, r.PlayerID, r.PlayerName, r.Team, r.Position, strconv.Itoa(r.Season),
		scenarioID, strconv.Itoa(r.Games), strconv.FormatFloat(r.HalfPPR, 'f', -1, 64),
		str(r.PassAttempts), str(r.Completions), str(r.PassYards), str(r.PassTD), str(r.Interceptions),
		str(r.RushAttempts), str(r.RushYards), str(r.RushTD),
		str(r.Targets), str(r.Receptions), str(r.RecYards), str(r.RecTD),
		str(r.SnapShare), str(r.TargetShare), str(r.RushShare), str(r.RedzoneShare),
		str(r.CompPct), str(r.YardsPerAtt), str(r.YardsPerCarry), str(r.CatchPct), str(r.YardsPerTarget),
		strconv.FormatBool(r.HasOverrides), strconv.FormatBool(r.IsFillPlayer),
	}
}

func newRecord(p *models.Projection, player *models.Player) Record {
	name, team, position := p.PlayerID, "", ""
	if player != nil {
		name, team, position = player.Name, player.Team, string(player.Position)
	}
	return Record{
		ProjectionID: p.ProjectionID, PlayerID: p.PlayerID, PlayerName: name,
		Team: team, Position: position, Season: p.Season, ScenarioID: p.ScenarioID,
		Games: p.Games, HalfPPR: p.HalfPPR,
		PassAttempts: p.PassAttempts, Completions: p.Completions, PassYards: p.PassYards,
		PassTD: p.PassTD, Interceptions: p.Interceptions,
		RushAttempts: p.RushAttempts, RushYards: p.RushYards, RushTD: p.RushTD,
		Targets: p.Targets, Receptions: p.Receptions, RecYards: p.RecYards, RecTD: p.RecTD,
		SnapShare: p.SnapShare, TargetShare: p.TargetShare, RushShare: p.RushShare, RedzoneShare: p.RedzoneShare,
		CompPct: p.CompPct, YardsPerAtt: p.YardsPerAtt, YardsPerCarry: p.YardsPerCarry,
		CatchPct: p.CatchPct, YardsPerTarget: p.YardsPerTarget,
		HasOverrides: p.HasOverrides, IsFillPlayer: p.IsFillPlayer,
	}
}

// Service resolves a filtered projection set into export records.
type Service struct {
	projections store.ProjectionRepository
	players     store.PlayerRepository
}

func NewService(projections store.ProjectionRepository, players store.PlayerRepository) *Service {
	return &Service{projections: projections, players: players}
}

// Build resolves every projection for (scenarioID, season, filter) into a
// flat Record, joining in each player's identity once per distinct player.
func (s *Service) Build(ctx context.Context, scenarioID *string, season int, filter store.ProjectionFilter) ([]Record, error) {
	projections, err := s.projections.ListByScenario(ctx, scenarioID, season, filter)
	if err != nil {
		return nil, err
	}

	players := make(map[string]*models.Player, len(projections))
	records := make([]Record, 0, len(projections))
	for _, p := range projections {
		player, ok := players[p.PlayerID]
		if !ok {
			player, err = s.players.Get(ctx, p.PlayerID)
			if err != nil {
				player = nil
			}
			players[p.PlayerID] = player
		}
		records = append(records, newRecord(p, player))
	}
	return records, nil
}

// WriteCSV writes records to w as CSV with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.row()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records to w as a JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}
