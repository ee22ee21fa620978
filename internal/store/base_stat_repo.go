package store

import (
	"context"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
)

type BaseStatRepository interface {
	// SeasonStats returns every (stat_name -> value) row for a player's
	// season total (week IS NULL), including the synthetic "games" and
	// "half_ppr" rows.
	SeasonStats(ctx context.Context, playerID string, season int) (map[string]float64, error)
}

type PostgresBaseStatRepository struct {
	q DBTX
}

func NewBaseStatRepository(q DBTX) *PostgresBaseStatRepository {
	return &PostgresBaseStatRepository{q: q}
}

func (r *PostgresBaseStatRepository) SeasonStats(ctx context.Context, playerID string, season int) (map[string]float64, error) {
	query := `
		SELECT stat_name, value FROM base_stats
		WHERE player_id = $1 AND season = $2 AND week IS NULL
	`
	rows, err := r.q.QueryContext(ctx, query, playerID, season)
	if err != nil {
		return nil, apperr.Internal("query base stats: %v", err)
	}
	defer rows.Close()

	stats := make(map[string]float64)
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, apperr.Internal("scan base stat: %v", err)
		}
		stats[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return stats, nil
}

var _ BaseStatRepository = (*PostgresBaseStatRepository)(nil)

// GameLogRepository backs the variance engine's empirical CV model.
type GameLogRepository interface {
	RecentGames(ctx context.Context, playerID string, fromSeason, throughSeason int) ([]*models.GameLog, error)
}

type PostgresGameLogRepository struct {
	q DBTX
}

func NewGameLogRepository(q DBTX) *PostgresGameLogRepository {
	return &PostgresGameLogRepository{q: q}
}

func (r *PostgresGameLogRepository) RecentGames(ctx context.Context, playerID string, fromSeason, throughSeason int) ([]*models.GameLog, error) {
	query := `
		SELECT game_stat_id, player_id, season, week, stats, created_at
		FROM game_stats
		WHERE player_id = $1 AND season >= $2 AND season < $3
	`
	rows, err := r.q.QueryContext(ctx, query, playerID, fromSeason, throughSeason)
	if err != nil {
		return nil, apperr.Internal("query game logs: %v", err)
	}
	defer rows.Close()

	var games []*models.GameLog
	for rows.Next() {
		g := &models.GameLog{}
		var statsJSON []byte
		if err := rows.Scan(&g.GameStatID, &g.PlayerID, &g.Season, &g.Week, &statsJSON, &g.CreatedAt); err != nil {
			return nil, apperr.Internal("scan game log: %v", err)
		}
		if err := unmarshalStats(statsJSON, &g.Stats); err != nil {
			return nil, apperr.Internal("unmarshal game stats: %v", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("%v", err)
	}
	return games, nil
}

var _ GameLogRepository = (*PostgresGameLogRepository)(nil)
