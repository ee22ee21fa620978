package teamadjust

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fantasyprojections/engine/internal/models"
)

func f(v float64) *float64 { return &v }

func TestDeriveBundle_ComputesVolumeAndEfficiencyRatios(t *testing.T) {
	orig := &models.TeamStat{PassAttempts: 550, PassYards: 3850, RushAttempts: 420, RushYards: 1890, PassTD: 25, RushTD: 15}
	newStat := &models.TeamStat{PassAttempts: 605, PassYards: 4840, RushAttempts: 420, RushYards: 1890, PassTD: 30, RushTD: 15}

	b := DeriveBundle(orig, newStat)
	assert.InDelta(t, 1.1, b.PassVolume, 0.0001)
	assert.InDelta(t, 1.0, b.RushVolume, 0.0001)
	// orig YPA = 7.0, new YPA = 8.0 -> efficiency ratio 8/7
	assert.InDelta(t, 8.0/7.0, b.PassEfficiency, 0.0001)
	assert.InDelta(t, 1.0, b.RushEfficiency, 0.0001)
	assert.InDelta(t, 45.0/40.0, b.ScoringRate, 0.0001)
}

func TestDeriveBundle_ZeroDenominatorIsNeutral(t *testing.T) {
	orig := &models.TeamStat{}
	newStat := &models.TeamStat{PassAttempts: 100}
	b := DeriveBundle(orig, newStat)
	assert.Equal(t, 1.0, b.PassVolume)
}

func TestApplyBundle_QBScalesPassingAndRushing(t *testing.T) {
	p := &models.Projection{PassAttempts: f(600), Completions: f(400), PassYards: f(4500), PassTD: f(30), RushAttempts: f(40), RushYards: f(200)}
	b := Bundle{PassVolume: 1.1, PassEfficiency: 1.05, RushVolume: 1.0, RushEfficiency: 1.0, ScoringRate: 1.2}
	ApplyBundle(p, models.QB, b)
	assert.InDelta(t, 660, *p.PassAttempts, 0.001)
	assert.InDelta(t, 440, *p.Completions, 0.001)
	assert.InDelta(t, 4500*1.1*1.05, *p.PassYards, 0.001)
	assert.InDelta(t, 36, *p.PassTD, 0.001)
}

func TestApplyBundle_RBGetsRushingAndPassingResidual(t *testing.T) {
	p := &models.Projection{RushAttempts: f(220), RushYards: f(1000), RushTD: f(8), Targets: f(50), Receptions: f(40), RecYards: f(350), RecTD: f(2)}
	b := Bundle{PassVolume: 1.1, RushVolume: 1.05, RushEfficiency: 1.02, ScoringRate: 1.1}
	ApplyBundle(p, models.RB, b)
	assert.InDelta(t, 220*1.05, *p.RushAttempts, 0.001)
	assert.InDelta(t, 1000*1.05*1.02, *p.RushYards, 0.001)
	assert.InDelta(t, 8*1.1, *p.RushTD, 0.001)
	assert.InDelta(t, 50*1.1, *p.Targets, 0.001)
}

func TestApplyBundle_WRTEOnlyTouchesReceiving(t *testing.T) {
	p := &models.Projection{Targets: f(100), Receptions: f(70), RecYards: f(900), RecTD: f(6), RushAttempts: f(3)}
	b := Bundle{PassVolume: 1.1, PassEfficiency: 1.05, ScoringRate: 1.2}
	ApplyBundle(p, models.WR, b)
	assert.InDelta(t, 110, *p.Targets, 0.001)
	assert.InDelta(t, 900*1.1*1.05, *p.RecYards, 0.001)
	assert.InDelta(t, 6*1.2, *p.RecTD, 0.001)
	// rushing is untouched for WR
	assert.InDelta(t, 3, *p.RushAttempts, 0.001)
}

func TestApplyBundle_IdempotentFromFreshSnapshot(t *testing.T) {
	base := func() *models.Projection { return &models.Projection{Targets: f(100), Receptions: f(70)} }
	b := Bundle{PassVolume: 1.2}

	p1 := base()
	ApplyBundle(p1, models.WR, b)
	p2 := base()
	ApplyBundle(p2, models.WR, b)

	assert.Equal(t, *p1.Targets, *p2.Targets)
}
