// Package scenario implements the scenario engine: create/list/get, atomic
// clone (deep-copy of a scenario's projections and overrides under fresh
// ids), cascade delete, and cross-scenario comparison. Grounded on
// original_source/backend/api/routes/scenarios.py's clone_scenario and the
// CRUD + cache-invalidate pattern in internal/draft/service.go.
package scenario

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/cache"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/store"
)

// ScenarioRef is the compact {id, name} shape a compare result uses to
// identify a scenario without repeating its full row.
type ScenarioRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerComparison is one row of a compare result: a player id mapped to
// that scenario's stat vector for every scenario the player appears in. A
// scenario the player is absent from is omitted from the map entirely —
// absence is not the same as zero-filled stats.
type PlayerComparison struct {
	PlayerID  string                         `json:"player"`
	Scenarios map[string]*models.Projection `json:"scenarios"`
}

// CompareResult is the full response shape for POST /api/scenarios/compare.
type CompareResult struct {
	Scenarios []ScenarioRef      `json:"scenarios"`
	Players   []PlayerComparison `json:"players"`
}

type Service struct {
	scenarios   store.ScenarioRepository
	projections store.ProjectionRepository
	overrides   store.OverrideRepository
	db          *store.Store
	cache       cache.Cache
}

func NewService(scenarios store.ScenarioRepository, projections store.ProjectionRepository, overrides store.OverrideRepository, db *store.Store, c cache.Cache) *Service {
	return &Service{scenarios: scenarios, projections: projections, overrides: overrides, db: db, cache: c}
}

// Create inserts a new scenario row. baseScenarioID is informational only —
// it records lineage but carries no data until a caller clones into it.
func (s *Service) Create(ctx context.Context, name string, description *string, season int, baseScenarioID *string) (*models.Scenario, error) {
	sc := &models.Scenario{
		ScenarioID:     uuid.NewString(),
		Name:           name,
		Description:    description,
		IsBaseline:     false,
		BaseScenarioID: baseScenarioID,
		Season:         season,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := s.db.WithTx(ctx, func(q store.DBTX) error {
		return s.scenarios.WithTx(q).Create(ctx, sc)
	}); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) Get(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	return s.scenarios.Get(ctx, scenarioID)
}

func (s *Service) List(ctx context.Context, season *int) ([]*models.Scenario, error) {
	return s.scenarios.List(ctx, season)
}

// Clone deep-copies every projection under source into a new scenario, and
// every override attached to those projections, each under a fresh id. The
// whole operation runs inside one transaction: clone is atomic, all or
// nothing.
func (s *Service) Clone(ctx context.Context, sourceID, newName string, description *string) (*models.Scenario, error) {
	source, err := s.scenarios.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	clone := &models.Scenario{
		ScenarioID:     uuid.NewString(),
		Name:           newName,
		Description:    description,
		IsBaseline:     false,
		BaseScenarioID: &sourceID,
		Season:         source.Season,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.db.WithTx(ctx, func(q store.DBTX) error {
		scenarios := s.scenarios.WithTx(q)
		projections := s.projections.WithTx(q)
		overrides := s.overrides.WithTx(q)

		if err := scenarios.Create(ctx, clone); err != nil {
			return err
		}

		sourceProjections, err := projections.ListByScenario(ctx, &sourceID, source.Season, store.ProjectionFilter{})
		if err != nil {
			return err
		}

		for _, p := range sourceProjections {
			oldID := p.ProjectionID
			newProj := p.Clone(uuid.NewString())
			newProj.ScenarioID = &clone.ScenarioID
			newProj.CreatedAt = time.Now()
			newProj.UpdatedAt = time.Now()
			if err := projections.Create(ctx, newProj); err != nil {
				return err
			}

			projOverrides, err := overrides.ListByProjection(ctx, oldID)
			if err != nil {
				return err
			}
			for _, o := range projOverrides {
				clonedOverride := &models.StatOverride{
					OverrideID:      uuid.NewString(),
					PlayerID:        o.PlayerID,
					ProjectionID:    newProj.ProjectionID,
					StatName:        o.StatName,
					CalculatedValue: o.CalculatedValue,
					ManualValue:     o.ManualValue,
					Notes:           o.Notes,
					CreatedAt:       time.Now(),
				}
				if err := overrides.Upsert(ctx, clonedOverride); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateScenario(ctx, clone.ScenarioID)
	}
	return clone, nil
}

// Delete cascades: every override on the scenario's projections, then the
// projections themselves, then the scenario row, all inside one transaction.
func (s *Service) Delete(ctx context.Context, scenarioID string) error {
	sc, err := s.scenarios.Get(ctx, scenarioID)
	if err != nil {
		return err
	}

	if err := s.db.WithTx(ctx, func(q store.DBTX) error {
		scenarios := s.scenarios.WithTx(q)
		projections := s.projections.WithTx(q)
		overrides := s.overrides.WithTx(q)

		toDelete, err := projections.ListByScenario(ctx, &scenarioID, sc.Season, store.ProjectionFilter{})
		if err != nil {
			return err
		}
		for _, p := range toDelete {
			if err := overrides.DeleteByProjection(ctx, p.ProjectionID); err != nil {
				return err
			}
			if err := projections.Delete(ctx, p.ProjectionID); err != nil {
				return err
			}
		}
		return scenarios.Delete(ctx, scenarioID)
	}); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateScenario(ctx, scenarioID)
	}
	return nil
}

// Compare builds the cross-scenario stat-vector comparison. A scenario id
// that doesn't resolve is an error for the whole call — unlike
// the batch operations, compare has no notion of a partial per-id failure.
func (s *Service) Compare(ctx context.Context, scenarioIDs []string, position *models.Position) (*CompareResult, error) {
	if len(scenarioIDs) == 0 {
		return nil, apperr.InvalidInput("compare requires at least one scenario id")
	}

	result := &CompareResult{}
	byPlayer := make(map[string]map[string]*models.Projection)
	order := make([]string, 0)

	filter := store.ProjectionFilter{}
	if position != nil {
		filter.Position = position
	}

	for _, id := range scenarioIDs {
		sc, err := s.scenarios.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Scenarios = append(result.Scenarios, ScenarioRef{ID: sc.ScenarioID, Name: sc.Name})

		projections, err := s.projections.ListByScenario(ctx, &id, sc.Season, filter)
		if err != nil {
			return nil, err
		}
		for _, p := range projections {
			if byPlayer[p.PlayerID] == nil {
				byPlayer[p.PlayerID] = make(map[string]*models.Projection)
				order = append(order, p.PlayerID)
			}
			byPlayer[p.PlayerID][sc.Name] = p
		}
	}

	for _, playerID := range order {
		result.Players = append(result.Players, PlayerComparison{
			PlayerID:  playerID,
			Scenarios: byPlayer[playerID],
		})
	}
	return result, nil
}
