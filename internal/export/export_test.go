package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/fantasyprojections/engine/internal/store"
)

func f(v float64) *float64 { return &v }

func TestNewRecord_JoinsPlayerIdentity(t *testing.T) {
	p := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, Games: 17, HalfPPR: 280, PassYards: f(4500)}
	player := &models.Player{PlayerID: "p1", Name: "Pat Mahomes", Team: "KC", Position: models.QB}

	r := newRecord(p, player)
	assert.Equal(t, "Pat Mahomes", r.PlayerName)
	assert.Equal(t, "KC", r.Team)
	assert.Equal(t, "QB", r.Position)
	assert.InDelta(t, 4500, *r.PassYards, 0.001)
}

func TestNewRecord_HandlesMissingPlayerGracefully(t *testing.T) {
	p := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025}
	r := newRecord(p, nil)
	assert.Equal(t, "p1", r.PlayerName)
	assert.Equal(t, "", r.Team)
}

func TestRecordRow_RendersNilStatsAsEmptyString(t *testing.T) {
	p := &models.Projection{ProjectionID: "proj1", PlayerID: "p1", Season: 2025, Games: 17, HalfPPR: 100}
	r := newRecord(p, nil)
	row := r.row()
	require.Len(t, row, len(columns))
	// pass_attempts is the 10th column and should render as "" when nil
	idx := indexOf(columns, "pass_attempts")
	assert.Equal(t, "", row[idx])
}

func indexOf(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}

func TestWriteCSV_EmitsHeaderAndOneRowPerRecord(t *testing.T) {
	records := []Record{
		newRecord(&models.Projection{ProjectionID: "p1", PlayerID: "pl1", Season: 2025, Games: 17, HalfPPR: 250, PassYards: f(4000)}, nil),
		newRecord(&models.Projection{ProjectionID: "p2", PlayerID: "pl2", Season: 2025, Games: 16, HalfPPR: 180}, nil),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(columns, ","), lines[0])
}

func TestWriteJSON_EncodesRecordsAsArray(t *testing.T) {
	records := []Record{newRecord(&models.Projection{ProjectionID: "p1", PlayerID: "pl1", Season: 2025}, nil)}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))

	var decoded []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "p1", decoded[0].ProjectionID)
}

type fakeProjections struct{ all []*models.Projection }

func (f *fakeProjections) Create(ctx context.Context, p *models.Projection) error { return nil }
func (f *fakeProjections) Get(ctx context.Context, id string) (*models.Projection, error) {
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeProjections) Update(ctx context.Context, p *models.Projection, prevUpdatedAt time.Time) error {
	return nil
}
func (f *fakeProjections) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeProjections) ListByPlayer(ctx context.Context, playerID string) ([]*models.Projection, error) {
	return nil, nil
}
func (f *fakeProjections) ListByScenario(ctx context.Context, scenarioID *string, season int, filter store.ProjectionFilter) ([]*models.Projection, error) {
	return f.all, nil
}
func (f *fakeProjections) GetBaseline(ctx context.Context, playerID string, season int) (*models.Projection, error) {
	return nil, apperr.NotFound("not implemented")
}
func (f *fakeProjections) WithTx(q store.DBTX) store.ProjectionRepository { return f }

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

func TestBuild_JoinsEachDistinctPlayerOnlyOnce(t *testing.T) {
	projections := &fakeProjections{all: []*models.Projection{
		{ProjectionID: "p1", PlayerID: "pl1", Season: 2025},
		{ProjectionID: "p2", PlayerID: "pl1", Season: 2025},
	}}
	lookups := 0
	players := &countingPlayers{fakePlayers: fakePlayers{byID: map[string]*models.Player{"pl1": {PlayerID: "pl1", Name: "Test Player"}}}, lookups: &lookups}
	svc := NewService(projections, players)

	records, err := svc.Build(context.Background(), nil, 2025, store.ProjectionFilter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Test Player", records[0].PlayerName)
	assert.Equal(t, 1, lookups)
}

type countingPlayers struct {
	fakePlayers
	lookups *int
}

func (c *countingPlayers) Get(ctx context.Context, playerID string) (*models.Player, error) {
	*c.lookups++
	return c.fakePlayers.Get(ctx, playerID)
}
