package override

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/statspec"
	"github.com/fantasyprojections/engine/internal/store"
	"github.com/fantasyprojections/engine/internal/store/storetest"
)

func f(v float64) *float64 { return &v }

func TestApplyCascade_VolumeScalesSiblingsByRatio(t *testing.T) {
	p := &models.Projection{
		PassAttempts:  f(500),
		Completions:   f(320),
		PassYards:     f(3800),
		PassTD:        f(28),
		Interceptions: f(10),
	}
	entry, ok := statspec.Lookup("pass_attempts")
	require.True(t, ok)

	applyCascade(p, entry, 600)

	assert.InDelta(t, 600, *p.PassAttempts, 0.001)
	// ratio = 600/500 = 1.2
	assert.InDelta(t, 384, *p.Completions, 0.001)
	assert.InDelta(t, 4560, *p.PassYards, 0.001)
	assert.InDelta(t, 33.6, *p.PassTD, 0.001)
	assert.InDelta(t, 12, *p.Interceptions, 0.001)
}

func TestApplyCascade_VolumeWithZeroOldValueSkipsSiblingScale(t *testing.T) {
	p := &models.Projection{PassAttempts: f(0), Completions: f(0)}
	entry, ok := statspec.Lookup("pass_attempts")
	require.True(t, ok)

	applyCascade(p, entry, 400)

	assert.InDelta(t, 400, *p.PassAttempts, 0.001)
	assert.InDelta(t, 0, *p.Completions, 0.001)
}

func TestApplyCascade_CountingJustReplacesTheField(t *testing.T) {
	p := &models.Projection{PassYards: f(3800), PassAttempts: f(500)}
	entry, ok := statspec.Lookup("pass_yards")
	require.True(t, ok)

	applyCascade(p, entry, 4200)

	assert.InDelta(t, 4200, *p.PassYards, 0.001)
	assert.InDelta(t, 500, *p.PassAttempts, 0.001)
}

func TestApplyCascade_RateRecomputesItsCounterpart(t *testing.T) {
	p := &models.Projection{PassAttempts: f(500), PassYards: f(3500), YardsPerAtt: f(7.0)}
	entry, ok := statspec.Lookup("yards_per_att")
	require.True(t, ok)

	applyCascade(p, entry, 8.0)

	assert.InDelta(t, 8.0, *p.YardsPerAtt, 0.001)
	// pass_yards = rate * pass_attempts = 8 * 500
	assert.InDelta(t, 4000, *p.PassYards, 0.001)
}

type fakePlayers struct{ byID map[string]*models.Player }

func (f *fakePlayers) Create(ctx context.Context, p *models.Player) error { return nil }
func (f *fakePlayers) Get(ctx context.Context, playerID string) (*models.Player, error) {
	p, ok := f.byID[playerID]
	if !ok {
		return nil, apperr.NotFound("player %s", playerID)
	}
	return p, nil
}
func (f *fakePlayers) Update(ctx context.Context, p *models.Player) error { return nil }
func (f *fakePlayers) ListByTeamPosition(ctx context.Context, team string, position models.Position) ([]*models.Player, error) {
	return nil, nil
}
func (f *fakePlayers) WithTx(q store.DBTX) store.PlayerRepository { return f }

type fakeProjections struct {
	byID    map[string]*models.Projection
	updated []*models.Projection
}

func (f *fakeProjections) Create(ctx context.Context, p *models.Projection) error { return nil }
func (f *fakeProjections) Get(ctx context.Context, id string) (*models.Projection, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("projection %s", id)
	}
	return p, nil
}
func (f *fakeProjections) Update(ctx context.Context, p *models.Projection, prevUpdatedAt time.Time) error {
	f.byID[p.ProjectionID] = p
	f.updated = append(f.updated, p)
	return nil
}
func (f *fakeProjections) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeProjections) ListByPlayer(ctx context.Context, playerID string) ([]*models.Projection, error) {
	return nil, nil
}
func (f *fakeProjections) ListByScenario(ctx context.Context, scenarioID *string, season int, filter store.ProjectionFilter) ([]*models.Projection, error) {
	return nil, nil
}
func (f *fakeProjections) GetBaseline(ctx context.Context, playerID string, season int) (*models.Projection, error) {
	for _, p := range f.byID {
		if p.PlayerID == playerID && p.Season == season {
			return p, nil
		}
	}
	return nil, apperr.NotFound("no baseline for %s season %d", playerID, season)
}
func (f *fakeProjections) WithTx(q store.DBTX) store.ProjectionRepository { return f }

type fakeOverrides struct {
	byID map[string]*models.StatOverride
}

func (f *fakeOverrides) Upsert(ctx context.Context, o *models.StatOverride) error {
	f.byID[o.OverrideID] = o
	return nil
}
func (f *fakeOverrides) Get(ctx context.Context, overrideID string) (*models.StatOverride, error) {
	o, ok := f.byID[overrideID]
	if !ok {
		return nil, apperr.NotFound("override %s", overrideID)
	}
	return o, nil
}
func (f *fakeOverrides) GetByProjectionStat(ctx context.Context, projectionID, statName string) (*models.StatOverride, error) {
	for _, o := range f.byID {
		if o.ProjectionID == projectionID && o.StatName == statName {
			return o, nil
		}
	}
	return nil, apperr.NotFound("no override for %s/%s", projectionID, statName)
}
func (f *fakeOverrides) ListByPlayer(ctx context.Context, playerID string) ([]*models.StatOverride, error) {
	return nil, nil
}
func (f *fakeOverrides) ListByProjection(ctx context.Context, projectionID string) ([]*models.StatOverride, error) {
	return nil, nil
}
func (f *fakeOverrides) Delete(ctx context.Context, overrideID string) error {
	delete(f.byID, overrideID)
	return nil
}
func (f *fakeOverrides) DeleteByProjection(ctx context.Context, projectionID string) error { return nil }
func (f *fakeOverrides) CountByProjection(ctx context.Context, projectionID string) (int, error) {
	n := 0
	for _, o := range f.byID {
		if o.ProjectionID == projectionID {
			n++
		}
	}
	return n, nil
}
func (f *fakeOverrides) WithTx(q store.DBTX) store.OverrideRepository { return f }

func TestService_Create_RejectsStatNotPermittedForPosition(t *testing.T) {
	player := &models.Player{PlayerID: "p1", Position: models.QB}
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025}
	svc := NewService(
		&fakeOverrides{byID: map[string]*models.StatOverride{}},
		&fakeProjections{byID: map[string]*models.Projection{"proj1": proj}},
		&fakePlayers{byID: map[string]*models.Player{"p1": player}},
		store.New(storetest.NewDB()),
	)

	_, err := svc.Create(context.Background(), "p1", "proj1", "catch_pct", 0.7, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestService_Create_AppliesCascadeAndSetsHasOverrides(t *testing.T) {
	player := &models.Player{PlayerID: "p1", Position: models.RB}
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, RushAttempts: f(200), RushYards: f(900)}
	projections := &fakeProjections{byID: map[string]*models.Projection{"proj1": proj}}
	overrides := &fakeOverrides{byID: map[string]*models.StatOverride{}}
	svc := NewService(overrides, projections, &fakePlayers{byID: map[string]*models.Player{"p1": player}}, store.New(storetest.NewDB()))

	ov, err := svc.Create(context.Background(), "p1", "proj1", "rush_attempts", 240, nil)
	require.NoError(t, err)
	assert.InDelta(t, 240, *proj.RushAttempts, 0.001)
	assert.True(t, proj.HasOverrides)
	assert.Len(t, overrides.byID, 1)
	assert.Equal(t, "rush_attempts", ov.StatName)
}

func TestService_Delete_RestoresCalculatedValueAndClearsHasOverrides(t *testing.T) {
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, RushAttempts: f(240), HasOverrides: true}
	overrides := &fakeOverrides{byID: map[string]*models.StatOverride{
		"ov1": {OverrideID: "ov1", ProjectionID: "proj1", StatName: "rush_attempts", CalculatedValue: 200, ManualValue: 240},
	}}
	projections := &fakeProjections{byID: map[string]*models.Projection{"proj1": proj}}
	svc := NewService(overrides, projections, &fakePlayers{byID: map[string]*models.Player{}}, store.New(storetest.NewDB()))

	err := svc.Delete(context.Background(), "ov1")
	require.NoError(t, err)
	assert.InDelta(t, 200, *proj.RushAttempts, 0.001)
	assert.False(t, proj.HasOverrides)
	assert.Empty(t, overrides.byID)
}

func TestService_Batch_IsolatesPerPlayerFailures(t *testing.T) {
	goodPlayer := &models.Player{PlayerID: "good", Position: models.RB}
	proj := &models.Projection{ProjectionID: "proj-good", PlayerID: "good", Season: 2025, RushAttempts: f(200)}
	projections := &fakeProjections{byID: map[string]*models.Projection{"proj-good": proj}}
	overrides := &fakeOverrides{byID: map[string]*models.StatOverride{}}
	svc := NewService(overrides, projections, &fakePlayers{byID: map[string]*models.Player{"good": goodPlayer}}, store.New(storetest.NewDB()))

	results := svc.Batch(context.Background(), []string{"good", "missing"}, "rush_attempts", BatchValue{Method: MethodPercentage, Amount: 10}, 2025, nil)

	require.Contains(t, results, "good")
	assert.True(t, results["good"].Success)
	assert.InDelta(t, 220, results["good"].NewValue, 0.001)

	require.Contains(t, results, "missing")
	assert.False(t, results["missing"].Success)
	assert.NotEmpty(t, results["missing"].Error)
}
