package rates

import (
	"testing"

	"github.com/fantasyprojections/engine/internal/apperr"
	"github.com/fantasyprojections/engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDerive_ComputesQBIdentities(t *testing.T) {
	p := &models.Projection{
		PassAttempts: ptr(600),
		Completions:  ptr(400),
		PassYards:    ptr(4800),
		PassTD:       ptr(38),
		Sacks:        ptr(20),
		SackYards:    ptr(140),
	}

	err := Derive(p)
	assert.NoError(t, err)
	assert.InDelta(t, 0.6667, *p.CompPct, 0.0005)
	assert.InDelta(t, 8.0, *p.YardsPerAtt, 0.0005)
	assert.InDelta(t, 4660.0, *p.NetPassYards, 0.0005)
	assert.InDelta(t, 4660.0/620.0, *p.NetYardsPerAtt, 0.0005)
}

func TestDerive_SkipsAbsentInputs(t *testing.T) {
	p := &models.Projection{RushAttempts: ptr(250), RushYards: ptr(1200)}
	assert.NoError(t, Derive(p))
	assert.NotNil(t, p.YardsPerCarry)
	assert.Nil(t, p.CompPct)
}

func TestDerive_OutOfRangeSurfacesInternalFault(t *testing.T) {
	p := &models.Projection{
		PassAttempts: ptr(10),
		PassTD:       ptr(5), // 50% TD rate, way outside [0, 0.2]
	}

	err := Derive(p)
	assert.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Nil(t, p.PassTDRate, "field must be left untouched on fault")
}

func TestDeriveShares_ClampsToUnitInterval(t *testing.T) {
	p := &models.Projection{Targets: ptr(120)}
	team := &models.TeamStat{Targets: 100}

	DeriveShares(p, team)
	assert.Equal(t, 1.0, *p.TarPct)
}
