package statspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyprojections/engine/internal/models"
)

func TestLookup_KnownAndUnknownStats(t *testing.T) {
	entry, ok := Lookup("pass_attempts")
	require.True(t, ok)
	assert.Equal(t, KindVolume, entry.Kind)

	_, ok = Lookup("not_a_stat")
	assert.False(t, ok)
}

func TestEntry_GetSetRoundTripsThroughProjection(t *testing.T) {
	entry, ok := Lookup("rush_yards")
	require.True(t, ok)

	p := &models.Projection{}
	assert.Nil(t, entry.Get(p))

	v := 123.5
	entry.Set(p, &v)
	require.NotNil(t, entry.Get(p))
	assert.Equal(t, 123.5, *entry.Get(p))
}

func TestEntry_KindsCoverAllThreeCategories(t *testing.T) {
	volume, _ := Lookup("targets")
	assert.Equal(t, KindVolume, volume.Kind)
	assert.ElementsMatch(t, []string{"receptions", "rec_yards", "rec_td"}, volume.Siblings)

	counting, _ := Lookup("receptions")
	assert.Equal(t, KindCounting, counting.Kind)
	assert.Equal(t, "targets", counting.VolumeStat)
	assert.Equal(t, "catch_pct", counting.RateStat)

	rate, _ := Lookup("catch_pct")
	assert.Equal(t, KindRate, rate.Kind)
	assert.Equal(t, "targets", rate.VolumeStat)
	assert.Equal(t, "receptions", rate.CounterpartStat)
}

func TestPermittedStats_QBHasNoCatchPct(t *testing.T) {
	set := PermittedStats(models.QB)
	assert.True(t, set["pass_attempts"])
	assert.False(t, set["catch_pct"])
	assert.False(t, set["targets"])
}

func TestPermittedStats_RBHasNoPassingStats(t *testing.T) {
	set := PermittedStats(models.RB)
	assert.True(t, set["rush_attempts"])
	assert.True(t, set["targets"])
	assert.False(t, set["pass_attempts"])
}

func TestPermittedStats_WRAndTEAllowIncidentalRushingButNoPassing(t *testing.T) {
	for _, pos := range []models.Position{models.WR, models.TE} {
		set := PermittedStats(pos)
		assert.True(t, set["targets"])
		assert.True(t, set["rush_attempts"])
		assert.False(t, set["pass_attempts"])
	}
}

func TestPermittedStats_SharedStatsAlwaysPresent(t *testing.T) {
	for _, pos := range []models.Position{models.QB, models.RB, models.WR, models.TE} {
		set := PermittedStats(pos)
		assert.True(t, set["snap_share"])
		assert.True(t, set["redzone_share"])
	}
}
