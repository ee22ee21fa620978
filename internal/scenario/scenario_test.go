package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/store"
	"github.com/fantasyprojections/engine/internal/store/storetest"
)

func f(v float64) *float64 { return &v }

type fakeCache struct{ invalidatedScenarios []string }

func (c *fakeCache) Get(ctx context.Context, key string) (any, bool)          { return nil, false }
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) {}
func (c *fakeCache) InvalidateScenario(ctx context.Context, scenarioID string) {
	c.invalidatedScenarios = append(c.invalidatedScenarios, scenarioID)
}
func (c *fakeCache) InvalidatePlayer(ctx context.Context, playerID string) {}

type fakeScenarios struct{ byID map[string]*models.Scenario }

func (f *fakeScenarios) Create(ctx context.Context, s *models.Scenario) error {
	f.byID[s.ScenarioID] = s
	return nil
}
func (f *fakeScenarios) Get(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	s, ok := f.byID[scenarioID]
	if !ok {
		return nil, apperr.NotFound("scenario %s", scenarioID)
	}
	return s, nil
}
func (f *fakeScenarios) List(ctx context.Context, season *int) ([]*models.Scenario, error) {
	var out []*models.Scenario
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, nil
}
func (f *fakeScenarios) Delete(ctx context.Context, scenarioID string) error {
	delete(f.byID, scenarioID)
	return nil
}
func (f *fakeScenarios) WithTx(q store.DBTX) store.ScenarioRepository { return f }

type fakeProjections struct{ byID map[string]*models.Projection }

func (f *fakeProjections) Create(ctx context.Context, p *models.Projection) error {
	f.byID[p.ProjectionID] = p
	return nil
}
func (f *fakeProjections) Get(ctx context.Context, id string) (*models.Projection, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("projection %s", id)
	}
	return p, nil
}
func (f *fakeProjections) Update(ctx context.Context, p *models.Projection, prevUpdatedAt time.Time) error {
	f.byID[p.ProjectionID] = p
	return nil
}
func (f *fakeProjections) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}
func (f *fakeProjections) ListByPlayer(ctx context.Context, playerID string) ([]*models.Projection, error) {
	return nil, nil
}
func (f *fakeProjections) ListByScenario(ctx context.Context, scenarioID *string, season int, filter store.ProjectionFilter) ([]*models.Projection, error) {
	var out []*models.Projection
	for _, p := range f.byID {
		if scenarioID != nil && (p.ScenarioID == nil || *p.ScenarioID != *scenarioID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
func (f *fakeProjections) GetBaseline(ctx context.Context, playerID string, season int) (*models.Projection, error) {
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeProjections) WithTx(q store.DBTX) store.ProjectionRepository { return f }

type fakeOverrides struct{ byProjection map[string][]*models.StatOverride }

func (f *fakeOverrides) Upsert(ctx context.Context, o *models.StatOverride) error {
	f.byProjection[o.ProjectionID] = append(f.byProjection[o.ProjectionID], o)
	return nil
}
func (f *fakeOverrides) Get(ctx context.Context, overrideID string) (*models.StatOverride, error) {
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeOverrides) GetByProjectionStat(ctx context.Context, projectionID, statName string) (*models.StatOverride, error) {
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeOverrides) ListByPlayer(ctx context.Context, playerID string) ([]*models.StatOverride, error) {
	return nil, nil
}
func (f *fakeOverrides) ListByProjection(ctx context.Context, projectionID string) ([]*models.StatOverride, error) {
	return f.byProjection[projectionID], nil
}
func (f *fakeOverrides) Delete(ctx context.Context, overrideID string) error { return nil }
func (f *fakeOverrides) DeleteByProjection(ctx context.Context, projectionID string) error {
	delete(f.byProjection, projectionID)
	return nil
}
func (f *fakeOverrides) CountByProjection(ctx context.Context, projectionID string) (int, error) {
	return len(f.byProjection[projectionID]), nil
}
func (f *fakeOverrides) WithTx(q store.DBTX) store.OverrideRepository { return f }

func newService() (*Service, *fakeScenarios, *fakeProjections, *fakeOverrides, *fakeCache) {
	scenarios := &fakeScenarios{byID: map[string]*models.Scenario{}}
	projections := &fakeProjections{byID: map[string]*models.Projection{}}
	overrides := &fakeOverrides{byProjection: map[string][]*models.StatOverride{}}
	c := &fakeCache{}
	return NewService(scenarios, projections, overrides, store.New(storetest.NewDB()), c), scenarios, projections, overrides, c
}

func TestCreate_InsertsScenarioRow(t *testing.T) {
	svc, scenarios, _, _, _ := newService()
	sc, err := svc.Create(context.Background(), "Week 1 Injury", nil, 2025, nil)
	require.NoError(t, err)
	assert.Contains(t, scenarios.byID, sc.ScenarioID)
	assert.False(t, sc.IsBaseline)
}

func TestClone_DeepCopiesProjectionsAndOverridesUnderFreshIDs(t *testing.T) {
	svc, scenarios, projections, overrides, cache := newService()
	sourceID := "src"
	scenarios.byID[sourceID] = &models.Scenario{ScenarioID: sourceID, Name: "source", Season: 2025}
	projections.byID["proj1"] = &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, ScenarioID: &sourceID, PassYards: f(4000)}
	overrides.byProjection["proj1"] = []*models.StatOverride{
		{OverrideID: "ov1", ProjectionID: "proj1", PlayerID: "p1", StatName: "pass_yards", CalculatedValue: 3800, ManualValue: 4000},
	}

	clone, err := svc.Clone(context.Background(), sourceID, "cloned", nil)
	require.NoError(t, err)
	assert.NotEqual(t, sourceID, clone.ScenarioID)
	assert.Equal(t, &sourceID, clone.BaseScenarioID)

	var clonedProj *models.Projection
	for _, p := range projections.byID {
		if p.ProjectionID != "proj1" {
			clonedProj = p
		}
	}
	require.NotNil(t, clonedProj)
	assert.Equal(t, &clone.ScenarioID, clonedProj.ScenarioID)
	assert.InDelta(t, 4000, *clonedProj.PassYards, 0.001)

	clonedOverrides := overrides.byProjection[clonedProj.ProjectionID]
	require.Len(t, clonedOverrides, 1)
	assert.NotEqual(t, "ov1", clonedOverrides[0].OverrideID)
	assert.Equal(t, "pass_yards", clonedOverrides[0].StatName)

	assert.Contains(t, cache.invalidatedScenarios, clone.ScenarioID)
}

func TestDelete_CascadesOverridesAndProjectionsThenScenario(t *testing.T) {
	svc, scenarios, projections, overrides, cache := newService()
	scenarios.byID["sc1"] = &models.Scenario{ScenarioID: "sc1", Name: "temp", Season: 2025}
	scID := "sc1"
	projections.byID["proj1"] = &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, ScenarioID: &scID}
	overrides.byProjection["proj1"] = []*models.StatOverride{{OverrideID: "ov1", ProjectionID: "proj1"}}

	err := svc.Delete(context.Background(), "sc1")
	require.NoError(t, err)
	assert.NotContains(t, scenarios.byID, "sc1")
	assert.NotContains(t, projections.byID, "proj1")
	assert.NotContains(t, overrides.byProjection, "proj1")
	assert.Contains(t, cache.invalidatedScenarios, "sc1")
}

func TestCompare_OmitsScenariosAPlayerIsAbsentFrom(t *testing.T) {
	svc, scenarios, projections, _, _ := newService()
	scenarios.byID["a"] = &models.Scenario{ScenarioID: "a", Name: "A", Season: 2025}
	scenarios.byID["b"] = &models.Scenario{ScenarioID: "b", Name: "B", Season: 2025}
	scA, scB := "a", "b"
	projections.byID["pa"] = &models.Projection{ProjectionID: "pa", PlayerID: "p1", Season: 2025, ScenarioID: &scA}
	projections.byID["pb"] = &models.Projection{ProjectionID: "pb", PlayerID: "p2", Season: 2025, ScenarioID: &scB}

	result, err := svc.Compare(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Scenarios, 2)

	byPlayer := map[string]PlayerComparison{}
	for _, pc := range result.Players {
		byPlayer[pc.PlayerID] = pc
	}
	require.Contains(t, byPlayer, "p1")
	assert.Len(t, byPlayer["p1"].Scenarios, 1)
	_, hasB := byPlayer["p1"].Scenarios["B"]
	assert.False(t, hasB)
}

func TestCompare_RequiresAtLeastOneScenarioID(t *testing.T) {
	svc, _, _, _, _ := newService()
	_, err := svc.Compare(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}
