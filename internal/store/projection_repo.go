package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

// ProjectionFilter narrows ListByScenario results to a position, team, or
// half-PPR range. ListByScenario takes the season as its own argument and
// does not read Season; ListByPlayer takes no filter.
type ProjectionFilter struct {
	Position    *models.Position
	Team        string // matched against players.team in SQL; ignored if empty
	Season      *int
	HalfPPRMin  *float64
	HalfPPRMax  *float64
}

type ProjectionRepository interface {
	Create(ctx context.Context, p *models.Projection) error
	Get(ctx context.Context, projectionID string) (*models.Projection, error)
	// Update performs an optimistic compare-and-set on updated_at. If
	// prevUpdatedAt does not match the stored row, it returns a Conflict.
	Update(ctx context.Context, p *models.Projection, prevUpdatedAt time.Time) error
	Delete(ctx context.Context, projectionID string) error
	ListByPlayer(ctx context.Context, playerID string) ([]*models.Projection, error)
	ListByScenario(ctx context.Context, scenarioID *string, season int, filter ProjectionFilter) ([]*models.Projection, error)
	// GetBaseline returns the (player, season, scenario=NULL) projection.
	GetBaseline(ctx context.Context, playerID string, season int) (*models.Projection, error)
	// WithTx returns a repository bound to q instead of the pool, so callers
	// inside Store.WithTx operate on the open transaction rather than
	// opening a new implicit one per statement.
	WithTx(q DBTX) ProjectionRepository
}

type PostgresProjectionRepository struct {
	q DBTX
}

func NewProjectionRepository(q DBTX) *PostgresProjectionRepository {
	return &PostgresProjectionRepository{q: q}
}

func (r *PostgresProjectionRepository) WithTx(q DBTX) ProjectionRepository {
	return &PostgresProjectionRepository{q: q}
}

const projectionColumns = `
	projection_id, player_id, scenario_id, season, games, half_ppr,
	pass_attempts, completions, pass_yards, pass_td, interceptions,
	gross_pass_yards, sacks, sack_yards, net_pass_yards, pass_td_rate, int_rate, sack_rate,
	rush_attempts, rush_yards, rush_td,
	gross_rush_yards, fumbles, fumble_rate, net_rush_yards, rush_td_rate,
	targets, receptions, rec_yards, rec_td,
	snap_share, target_share, rush_share, redzone_share,
	pass_att_pct, comp_pct, yards_per_att, net_yards_per_att, rush_att_pct,
	yards_per_carry, net_yards_per_carry, tar_pct, catch_pct, yards_per_target, rec_td_rate,
	has_overrides, is_fill_player, created_at, updated_at
`

func scanProjection(row interface{ Scan(...interface{}) error }) (*models.Projection, error) {
	p := &models.Projection{}
	err := row.Scan(
		&p.ProjectionID, &p.PlayerID, &p.ScenarioID, &p.Season, &p.Games, &p.HalfPPR,
		&p.PassAttempts, &p.Completions, &p.PassYards, &p.PassTD, &p.Interceptions,
		&p.GrossPassYards, &p.Sacks, &p.SackYards, &p.NetPassYards, &p.PassTDRate, &p.IntRate, &p.SackRate,
		&p.RushAttempts, &p.RushYards, &p.RushTD,
		&p.GrossRushYards, &p.Fumbles, &p.FumbleRate, &p.NetRushYards, &p.RushTDRate,
		&p.Targets, &p.Receptions, &p.RecYards, &p.RecTD,
		&p.SnapShare, &p.TargetShare, &p.RushShare, &p.RedzoneShare,
		&p.PassAttPct, &p.CompPct, &p.YardsPerAtt, &p.NetYardsPerAtt, &p.RushAttPct,
		&p.YardsPerCarry, &p.NetYardsPerCarry, &p.TarPct, &p.CatchPct, &p.YardsPerTarget, &p.RecTDRate,
		&p.HasOverrides, &p.IsFillPlayer, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *PostgresProjectionRepository) Create(ctx context.Context, p *models.Projection) error {
	query := `INSERT INTO projections (` + projectionColumns + `) VALUES (
		$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,
		$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40,
		$41,$42,$43,$44,$45,$46,$47,$48
	)`
	_, err := r.q.ExecContext(ctx, query,
		p.ProjectionID, p.PlayerID, p.ScenarioID, p.Season, p.Games, p.HalfPPR,
		p.PassAttempts, p.Completions, p.PassYards, p.PassTD, p.Interceptions,
		p.GrossPassYards, p.Sacks, p.SackYards, p.NetPassYards, p.PassTDRate, p.IntRate, p.SackRate,
		p.RushAttempts, p.RushYards, p.RushTD,
		p.GrossRushYards, p.Fumbles, p.FumbleRate, p.NetRushYards, p.RushTDRate,
		p.Targets, p.Receptions, p.RecYards, p.RecTD,
		p.SnapShare, p.TargetShare, p.RushShare, p.RedzoneShare,
		p.PassAttPct, p.CompPct, p.YardsPerAtt, p.NetYardsPerAtt, p.RushAttPct,
		p.YardsPerCarry, p.NetYardsPerCarry, p.TarPct, p.CatchPct, p.YardsPerTarget, p.RecTDRate,
		p.HasOverrides, p.IsFillPlayer, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("create projection: %v", err)
	}
	return nil
}

func (r *PostgresProjectionRepository) Get(ctx context.Context, projectionID string) (*models.Projection, error) {
	query := `SELECT ` + projectionColumns + ` FROM projections WHERE projection_id = $1`
	p, err := scanProjection(r.q.QueryRowContext(ctx, query, projectionID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("projection %s not found", projectionID)
	}
	if err != nil {
		return nil, apperr.Internal("get projection: %v", err)
	}
	return p, nil
}

func (r *PostgresProjectionRepository) GetBaseline(ctx context.Context, playerID string, season int) (*models.Projection, error) {
	query := `SELECT ` + projectionColumns + ` FROM projections WHERE player_id = $1 AND season = $2 AND scenario_id IS NULL`
	p, err := scanProjection(r.q.QueryRowContext(ctx, query, playerID, season))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("baseline projection for player %s season %d not found", playerID, season)
	}
	if err != nil {
		return nil, apperr.Internal("get baseline projection: %v", err)
	}
	return p, nil
}

// Update writes every field back with an optimistic compare-and-set on
// updated_at; writers on the same projection serialize through this check.
func (r *PostgresProjectionRepository) Update(ctx context.Context, p *models.Projection, prevUpdatedAt time.Time) error {
	query := `
		UPDATE projections SET
			games=$3, half_ppr=$4,
			pass_attempts=$5, completions=$6, pass_yards=$7, pass_td=$8, interceptions=$9,
			gross_pass_yards=$10, sacks=$11, sack_yards=$12, net_pass_yards=$13, pass_td_rate=$14, int_rate=$15, sack_rate=$16,
			rush_attempts=$17, rush_yards=$18, rush_td=$19,
			gross_rush_yards=$20, fumbles=$21, fumble_rate=$22, net_rush_yards=$23, rush_td_rate=$24,
			targets=$25, receptions=$26, rec_yards=$27, rec_td=$28,
			snap_share=$29, target_share=$30, rush_share=$31, redzone_share=$32,
			pass_att_pct=$33, comp_pct=$34, yards_per_att=$35, net_yards_per_att=$36, rush_att_pct=$37,
			yards_per_carry=$38, net_yards_per_carry=$39, tar_pct=$40, catch_pct=$41, yards_per_target=$42, rec_td_rate=$43,
			has_overrides=$44, is_fill_player=$45, updated_at=$46
		WHERE projection_id=$1 AND updated_at=$2
	`
	res, err := r.q.ExecContext(ctx, query,
		p.ProjectionID, prevUpdatedAt,
		p.Games, p.HalfPPR,
		p.PassAttempts, p.Completions, p.PassYards, p.PassTD, p.Interceptions,
		p.GrossPassYards, p.Sacks, p.SackYards, p.NetPassYards, p.PassTDRate, p.IntRate, p.SackRate,
		p.RushAttempts, p.RushYards, p.RushTD,
		p.GrossRushYards, p.Fumbles, p.FumbleRate, p.NetRushYards, p.RushTDRate,
		p.Targets, p.Receptions, p.RecYards, p.RecTD,
		p.SnapShare, p.TargetShare, p.RushShare, p.RedzoneShare,
		p.PassAttPct, p.CompPct, p.YardsPerAtt, p.NetYardsPerAtt, p.RushAttPct,
		p.YardsPerCarry, p.NetYardsPerCarry, p.TarPct, p.CatchPct, p.YardsPerTarget, p.RecTDRate,
		p.HasOverrides, p.IsFillPlayer, p.UpdatedAt,
	)
	if err != nil {
		return apperr.Internal("update projection: %v", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected: %v", err)
	}
	if n == 0 {
		// Distinguish "doesn't exist" from "someone else wrote first".
		if _, getErr := r.Get(ctx, p.ProjectionID); getErr != nil {
			return getErr
		}
		return apperr.Conflict("projection %s was updated concurrently", p.ProjectionID)
	}
	return nil
}

func (r *PostgresProjectionRepository) Delete(ctx context.Context, projectionID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM projections WHERE projection_id = $1`, projectionID)
	if err != nil {
		return apperr.Internal("delete projection: %v", err)
	}
	return rowsAffected(res, apperr.NotFound("projection %s not found", projectionID))
}

func (r *PostgresProjectionRepository) ListByPlayer(ctx context.Context, playerID string) ([]*models.Projection, error) {
	query := `SELECT ` + projectionColumns + ` FROM projections WHERE player_id = $1 ORDER BY season DESC`
	return r.queryProjections(ctx, query, playerID)
}

func (r *PostgresProjectionRepository) ListByScenario(ctx context.Context, scenarioID *string, season int, filter ProjectionFilter) ([]*models.Projection, error) {
	query := `
		SELECT p.` + projectionColumns[1:] // placeholder, replaced below
	_ = query
	base := `
		SELECT ` + prefixed(projectionColumns, "p") + `
		FROM projections p
		JOIN players pl ON pl.player_id = p.player_id
		WHERE p.season = $1 AND (($2::text IS NULL AND p.scenario_id IS NULL) OR p.scenario_id = $2)
	`
	args := []interface{}{season, scenarioID}
	idx := 3
	if filter.Position != nil {
		base += conditionf(&idx, "pl.position = $%d")
		args = append(args, *filter.Position)
	}
	if filter.Team != "" {
		base += conditionf(&idx, "pl.team = $%d")
		args = append(args, filter.Team)
	}
	if filter.HalfPPRMin != nil {
		base += conditionf(&idx, "p.half_ppr >= $%d")
		args = append(args, *filter.HalfPPRMin)
	}
	if filter.HalfPPRMax != nil {
		base += conditionf(&idx, "p.half_ppr <= $%d")
		args = append(args, *filter.HalfPPRMax)
	}
	base += " ORDER BY p.half_ppr DESC"

	return r.queryProjections(ctx, base, args...)
}

func conditionf(idx *int, clause string) string {
	s := " AND " + sprintfClause(clause, *idx)
	*idx++
	return s
}

func sprintfClause(clause string, idx int) string {
	out := make([]byte, 0, len(clause))
	for i := 0; i < len(clause); i++ {
		if clause[i] == '%' && i+1 < len(clause) && clause[i+1] == 'd' {
			out = append(out, []byte(itoa(idx))...)
			i++
			continue
		}
		out = append(out, clause[i])
	}
	return string(out)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func prefixed(cols, alias string) string {
	return alias + "." + trimAndJoin(cols, alias)
}

// trimAndJoin rewrites the shared, unqualified column list into
// "alias.col, alias.col, ..." so it can be reused for both single-table and
// joined queries without keeping two copies of the column order in sync.
func trimAndJoin(cols, alias string) string {
	out := ""
	first := true
	col := ""
	flush := func() {
		if col == "" {
			return
		}
		if !first {
			out += ", " + alias + "."
		}
		out += col
		first = false
		col = ""
	}
	for i := 0; i < len(cols); i++ {
		c := cols[i]
		switch c {
		case ' ', '\n', '\t':
			continue
		case ',':
			flush()
		default:
			col += string(c)
		}
	}
	flush()
	return out
}

func (r *PostgresProjectionRepository) queryProjections(ctx context.Context, query string, args ...interface{}) ([]*models.Projection, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal("query projections: %v", err)
	}
	defer rows.Close()

	var out []*models.Projection
	for rows.Next() {
		p, err := scanProjection(rows)
		if err != nil {
			return nil, apperr.Internal("scan projection: %v", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return out, nil
}

var _ ProjectionRepository = (*PostgresProjectionRepository)(nil)
