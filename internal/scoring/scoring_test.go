package scoring

import (
	"testing"

	"github.com/fantasyprojections/engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestPoints_HalfPPR(t *testing.T) {
	p := &models.Projection{
		PassYards:     ptr(4800),
		PassTD:        ptr(38),
		Interceptions: ptr(10),
		RushYards:     ptr(50),
		RushTD:        ptr(2),
		Receptions:    ptr(0),
		RecYards:      ptr(0),
		RecTD:         ptr(0),
	}

	expected := 4800*0.04 + 38*4 - 10*2 + 50*0.1 + 2*6
	assert.InDelta(t, expected, Points(p, HalfPPR), 0.001)
}

func TestPoints_PrefersNetYards(t *testing.T) {
	p := &models.Projection{
		PassYards:    ptr(5000),
		NetPassYards: ptr(4700),
	}
	assert.InDelta(t, 4700*0.04, Points(p, HalfPPR), 0.001)
}

func TestPoints_ReceptionWeightsByRule(t *testing.T) {
	p := &models.Projection{Receptions: ptr(80)}

	assert.InDelta(t, 0.0, Points(p, Standard), 0.001)
	assert.InDelta(t, 40.0, Points(p, HalfPPR), 0.001)
	assert.InDelta(t, 80.0, Points(p, FullPPR), 0.001)
}

func TestPoints_NilStatsTreatedAsZero(t *testing.T) {
	p := &models.Projection{}
	assert.Equal(t, 0.0, Points(p, HalfPPR))
}

func TestRecompute_WritesHalfPPR(t *testing.T) {
	p := &models.Projection{RushYards: ptr(100), RushTD: ptr(1)}
	Recompute(p)
	assert.InDelta(t, 16.0, p.HalfPPR, 0.001)
}
