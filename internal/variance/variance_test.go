package variance

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

func TestComputeIntervals_CentersOnValueAndNeverGoesNegative(t *testing.T) {
	intervals := computeIntervals(100, 20)
	iv95 := intervals["0.95"]
	assert.InDelta(t, 100-1.96*20, iv95.Lower, 0.01)
	assert.InDelta(t, 100+1.96*20, iv95.Upper, 0.01)

	floor := computeIntervals(5, 100)
	assert.Equal(t, 0.0, floor["0.99"].Lower)
}

func TestCorrLookup_IsSymmetricAndDefaultsToZero(t *testing.T) {
	assert.InDelta(t, 0.92, corrLookup(models.QB, "pass_attempts", "pass_yards"), 0.0001)
	assert.InDelta(t, 0.92, corrLookup(models.QB, "pass_yards", "pass_attempts"), 0.0001)
	assert.Equal(t, 0.0, corrLookup(models.QB, "pass_yards", "interceptions"))
	assert.Equal(t, 0.0, corrLookup(models.RB, "unknown_a", "unknown_b"))
}

func TestClosestConfidence_SnapsToNearestSupportedLevel(t *testing.T) {
	assert.Equal(t, 0.95, closestConfidence(0.96))
	assert.Equal(t, 0.90, closestConfidence(0.88))
	assert.Equal(t, 0.50, closestConfidence(0.01))
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
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeProjections) WithTx(q store.DBTX) store.ProjectionRepository { return f }

type fakeGameLogs struct{ byPlayer map[string][]*models.GameLog }

func (f *fakeGameLogs) RecentGames(ctx context.Context, playerID string, fromSeason, throughSeason int) ([]*models.GameLog, error) {
	return f.byPlayer[playerID], nil
}

type fakeScenarios struct{ created []*models.Scenario }

func (f *fakeScenarios) Create(ctx context.Context, s *models.Scenario) error {
	f.created = append(f.created, s)
	return nil
}
func (f *fakeScenarios) Get(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeScenarios) List(ctx context.Context, season *int) ([]*models.Scenario, error) {
	return nil, nil
}
func (f *fakeScenarios) Delete(ctx context.Context, scenarioID string) error { return nil }
func (f *fakeScenarios) WithTx(q store.DBTX) store.ScenarioRepository { return f }

func TestCalculate_FallsBackToPositionDefaultWithoutGameLogs(t *testing.T) {
	player := &models.Player{PlayerID: "p1", Name: "Test QB", Position: models.QB}
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, Games: 17,
		PassAttempts: f(600), PassYards: f(4500), HalfPPR: 300}
	svc := NewService(
		&fakeProjections{byID: map[string]*models.Projection{"proj1": proj}},
		&fakePlayers{byID: map[string]*models.Player{"p1": player}},
		&fakeGameLogs{byPlayer: map[string][]*models.GameLog{}},
		&fakeScenarios{},
		store.New(storetest.NewDB()), 0,
	)

	result, err := svc.Calculate(context.Background(), "proj1")
	require.NoError(t, err)
	require.Contains(t, result, "pass_attempts")
	assert.InDelta(t, 0.12, result["pass_attempts"].CoefVar, 0.0001)
	assert.Contains(t, result, "half_ppr")
}

func TestCalculate_UsesEmpiricalCVWhenEnoughGameLogs(t *testing.T) {
	player := &models.Player{PlayerID: "p1", Name: "Test QB", Position: models.QB}
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, Games: 17,
		PassAttempts: f(600), HalfPPR: 300}

	games := make([]*models.GameLog, 0, 10)
	for i := 0; i < 10; i++ {
		v := 35.0
		if i%2 == 0 {
			v = 40.0
		}
		games = append(games, &models.GameLog{PlayerID: "p1", Stats: map[string]float64{"pass_attempts": v}})
	}

	svc := NewService(
		&fakeProjections{byID: map[string]*models.Projection{"proj1": proj}},
		&fakePlayers{byID: map[string]*models.Player{"p1": player}},
		&fakeGameLogs{byPlayer: map[string][]*models.GameLog{"p1": games}},
		&fakeScenarios{},
		store.New(storetest.NewDB()), 8,
	)

	result, err := svc.Calculate(context.Background(), "proj1")
	require.NoError(t, err)
	// empirical coef should differ from the 0.12 default since games vary 35/40
	assert.NotEqual(t, 0.12, result["pass_attempts"].CoefVar)
}

func TestRange_ProducesLowMedianHighAroundBaseValue(t *testing.T) {
	player := &models.Player{PlayerID: "p1", Name: "Test RB", Position: models.RB}
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, Games: 17,
		RushAttempts: f(220), RushYards: f(1000), HalfPPR: 220}
	svc := NewService(
		&fakeProjections{byID: map[string]*models.Projection{"proj1": proj}},
		&fakePlayers{byID: map[string]*models.Player{"p1": player}},
		&fakeGameLogs{byPlayer: map[string][]*models.GameLog{}},
		&fakeScenarios{},
		store.New(storetest.NewDB()), 0,
	)

	result, err := svc.Range(context.Background(), "proj1", 0.95, false)
	require.NoError(t, err)
	assert.Less(t, result.Low["rush_attempts"], result.Median["rush_attempts"])
	assert.Greater(t, result.High["rush_attempts"], result.Median["rush_attempts"])
	assert.Nil(t, result.ScenarioIDs)
}

func TestRange_MaterializesLowAndHighScenarios(t *testing.T) {
	player := &models.Player{PlayerID: "p1", Name: "Test RB", Position: models.RB}
	proj := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, Games: 17,
		RushAttempts: f(220), RushYards: f(1000), HalfPPR: 220}
	projections := &fakeProjections{byID: map[string]*models.Projection{"proj1": proj}}
	scenarios := &fakeScenarios{}
	svc := NewService(
		projections,
		&fakePlayers{byID: map[string]*models.Player{"p1": player}},
		&fakeGameLogs{byPlayer: map[string][]*models.GameLog{}},
		scenarios,
		store.New(storetest.NewDB()), 0,
	)

	result, err := svc.Range(context.Background(), "proj1", 0.95, true)
	require.NoError(t, err)
	require.Contains(t, result.ScenarioIDs, "low")
	require.Contains(t, result.ScenarioIDs, "high")
	assert.Len(t, scenarios.created, 2)
	// the two new cloned projections are materialized alongside the original
	assert.Len(t, projections.byID, 3)
}
