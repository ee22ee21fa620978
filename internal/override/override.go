// Package override implements the manual stat override engine:
// single-stat override with a dependent-stat cascade, delete-and-restore,
// and the batch endpoint that applies one stat change across many players.
// Grounded on original_source/backend/services/override_service.py
// (create_override/_recalculate_*_stats/delete_override/batch_override) and
// the create-then-undo pattern in internal/draft/service.go's
// MakePick/UndoPick.
package override

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/rates"
	"github.com/fantasyprojections/engine/internal/scoring"
	"github.com/fantasyprojections/engine/internal/statspec"
	"github.com/fantasyprojections/engine/internal/store"
)

// BatchMethod names how BatchValue.Amount combines with a player's current
// value in the batch endpoint.
type BatchMethod string

const (
	MethodPercentage BatchMethod = "percentage"
	MethodIncrement  BatchMethod = "increment"
)

// BatchValue is the batch endpoint's polymorphic value: either an absolute
// number, or a {method, amount} adjustment resolved against each player's
// own current value.
type BatchValue struct {
	Absolute *float64
	Method   BatchMethod
	Amount   float64
}

// BatchResult reports one player's outcome from a batch override call. A
// failure here (bad stat for position, missing baseline) never aborts the
// rest of the batch.
type BatchResult struct {
	Success    bool    `json:"success"`
	OverrideID string  `json:"override_id,omitempty"`
	OldValue   float64 `json:"old_value,omitempty"`
	NewValue   float64 `json:"new_value,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func ptr(v float64) *float64 { return &v }

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Service drives the override cascade and persists it alongside the
// mutated projection in one transaction.
type Service struct {
	overrides   store.OverrideRepository
	projections store.ProjectionRepository
	players     store.PlayerRepository
	db          *store.Store
}

func NewService(overrides store.OverrideRepository, projections store.ProjectionRepository, players store.PlayerRepository, db *store.Store) *Service {
	return &Service{overrides: overrides, projections: projections, players: players, db: db}
}

// applyCascade mutates p's statName field to manualValue and propagates the
// dependent-stat effect:
//
//   - a volume stat (pass_attempts, rush_attempts, targets) scales every
//     counting sibling by the same ratio, preserving their rates;
//   - a counting stat (completions, pass_yards, ...) is simply replaced —
//     rates.Derive recomputes its paired rate from the new value afterward;
//   - a rate stat is replaced and its paired counting stat is recomputed as
//     rate*volume, since rates.Derive only ever derives rate from counting,
//     never the reverse, and would otherwise immediately undo the override.
func applyCascade(p *models.Projection, entry statspec.Entry, manualValue float64) {
	switch entry.Kind {
	case statspec.KindVolume:
		oldVolume := valueOf(entry.Get(p))
		entry.Set(p, ptr(manualValue))
		if oldVolume == 0 {
			return
		}
		ratio := manualValue / oldVolume
		for _, sib := range entry.Siblings {
			sibEntry, ok := statspec.Lookup(sib)
			if !ok {
				continue
			}
			old := sibEntry.Get(p)
			if old == nil {
				continue
			}
			sibEntry.Set(p, ptr(*old*ratio))
		}
	case statspec.KindCounting:
		entry.Set(p, ptr(manualValue))
	case statspec.KindRate:
		entry.Set(p, ptr(manualValue))
		if entry.CounterpartStat == "" || entry.VolumeStat == "" {
			return
		}
		counterpart, ok := statspec.Lookup(entry.CounterpartStat)
		if !ok {
			return
		}
		volume, ok := statspec.Lookup(entry.VolumeStat)
		if !ok {
			return
		}
		counterpart.Set(p, ptr(manualValue*valueOf(volume.Get(p))))
	}
}

// Create applies a manual override to one stat on one projection and
// persists both the updated projection and the override row in a single
// transaction. The projection's has_overrides flag is set unconditionally —
// this is the first override, or an additional one.
func (s *Service) Create(ctx context.Context, playerID, projectionID, statName string, manualValue float64, notes *string) (*models.StatOverride, error) {
	p, err := s.projections.Get(ctx, projectionID)
	if err != nil {
		return nil, err
	}
	if p.PlayerID != playerID {
		return nil, apperr.InvalidInput("projection %s does not belong to player %s", projectionID, playerID)
	}

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !statspec.PermittedStats(player.Position)[statName] {
		return nil, apperr.InvalidInput("stat %q is not valid for position %s", statName, player.Position)
	}
	entry, ok := statspec.Lookup(statName)
	if !ok {
		return nil, apperr.InvalidInput("unknown stat %q", statName)
	}

	calculatedValue := valueOf(entry.Get(p))
	prevUpdatedAt := p.UpdatedAt

	applyCascade(p, entry, manualValue)
	if err := rates.Derive(p); err != nil {
		return nil, err
	}
	scoring.Recompute(p)
	p.HasOverrides = true
	p.UpdatedAt = time.Now()

	ov := &models.StatOverride{
		OverrideID:      uuid.NewString(),
		PlayerID:        playerID,
		ProjectionID:    projectionID,
		StatName:        statName,
		CalculatedValue: calculatedValue,
		ManualValue:     manualValue,
		Notes:           notes,
		CreatedAt:       time.Now(),
	}

	if err := s.db.WithTx(ctx, func(q store.DBTX) error {
		if err := s.projections.WithTx(q).Update(ctx, p, prevUpdatedAt); err != nil {
			return err
		}
		return s.overrides.WithTx(q).Upsert(ctx, ov)
	}); err != nil {
		return nil, err
	}
	return ov, nil
}

// Delete removes an override, restores the stat to its recorded
// calculated_value (re-running the same cascade), and clears has_overrides
// once no override remains on the projection.
func (s *Service) Delete(ctx context.Context, overrideID string) error {
	ov, err := s.overrides.Get(ctx, overrideID)
	if err != nil {
		return err
	}
	p, err := s.projections.Get(ctx, ov.ProjectionID)
	if err != nil {
		return err
	}
	entry, ok := statspec.Lookup(ov.StatName)
	if !ok {
		return apperr.Internal("override %s references unknown stat %q", overrideID, ov.StatName)
	}

	prevUpdatedAt := p.UpdatedAt
	applyCascade(p, entry, ov.CalculatedValue)
	if err := rates.Derive(p); err != nil {
		return err
	}
	scoring.Recompute(p)
	p.UpdatedAt = time.Now()

	return s.db.WithTx(ctx, func(q store.DBTX) error {
		overrides := s.overrides.WithTx(q)
		if err := overrides.Delete(ctx, overrideID); err != nil {
			return err
		}
		remaining, err := overrides.CountByProjection(ctx, p.ProjectionID)
		if err != nil {
			return err
		}
		p.HasOverrides = remaining > 0
		return s.projections.WithTx(q).Update(ctx, p, prevUpdatedAt)
	})
}

func (s *Service) ListByPlayer(ctx context.Context, playerID string) ([]*models.StatOverride, error) {
	return s.overrides.ListByPlayer(ctx, playerID)
}

func (s *Service) ListByProjection(ctx context.Context, projectionID string) ([]*models.StatOverride, error) {
	return s.overrides.ListByProjection(ctx, projectionID)
}

// Batch applies the same stat change to every player in playerIDs, each
// against that player's current-season baseline projection. A player whose
// position doesn't carry statName, or who has no baseline yet, fails
// independently without aborting the rest of the batch — the per-player
// envelope in the result map is the unit of success/failure, not the call.
func (s *Service) Batch(ctx context.Context, playerIDs []string, statName string, value BatchValue, season int, notes *string) map[string]BatchResult {
	results := make(map[string]BatchResult, len(playerIDs))
	for _, playerID := range playerIDs {
		results[playerID] = s.batchOne(ctx, playerID, statName, value, season, notes)
	}
	return results
}

func (s *Service) batchOne(ctx context.Context, playerID, statName string, value BatchValue, season int, notes *string) BatchResult {
	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return BatchResult{Error: err.Error()}
	}
	if !statspec.PermittedStats(player.Position)[statName] {
		return BatchResult{Error: fmt.Sprintf("stat %q is not valid for position %s", statName, player.Position)}
	}
	entry, ok := statspec.Lookup(statName)
	if !ok {
		return BatchResult{Error: fmt.Sprintf("unknown stat %q", statName)}
	}

	proj, err := s.projections.GetBaseline(ctx, playerID, season)
	if err != nil {
		return BatchResult{Error: err.Error()}
	}

	old := valueOf(entry.Get(proj))
	var newValue float64
	switch {
	case value.Absolute != nil:
		newValue = *value.Absolute
	case value.Method == MethodPercentage:
		newValue = old * (1 + value.Amount/100)
	case value.Method == MethodIncrement:
		newValue = old + value.Amount
	default:
		return BatchResult{Error: "batch value must set Absolute or a Method/Amount pair"}
	}

	ov, err := s.Create(ctx, playerID, proj.ProjectionID, statName, newValue, notes)
	if err != nil {
		return BatchResult{Error: err.Error()}
	}
	return BatchResult{Success: true, OverrideID: ov.OverrideID, OldValue: old, NewValue: newValue}
}
