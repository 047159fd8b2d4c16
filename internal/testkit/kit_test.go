package testkit

import (
	"math"
	"testing"

	"neuropipe/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	cfg := DefaultConfig()

	a := NewGenerator(cfg).Dataset("a.csv")
	b := NewGenerator(cfg).Dataset("b.csv")

	require.Equal(t, len(a.Records), len(b.Records))
	for i := range a.Records {
		ra, rb := a.Records[i], b.Records[i]
		assert.Equal(t, ra.SessionID, rb.SessionID)
		assert.Equal(t, ra.ArenaType, rb.ArenaType)
		if math.IsNaN(ra.MUARate) {
			assert.True(t, math.IsNaN(rb.MUARate), "row %d", i)
		} else {
			assert.Equal(t, ra.MUARate, rb.MUARate, "row %d", i)
		}
	}
}

func TestGenerator_DatasetShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sessions = 2
	cfg.RowsPerGroup = 50

	ds := NewGenerator(cfg).Dataset("synthetic.csv")

	assert.Equal(t, 2*len(cfg.Arenas)*50, ds.RowCount())
	assert.Len(t, ds.Sessions(), 2)

	// scores start missing and the generator leaves deliberate holes
	missingRates := 0
	for _, rec := range ds.Records {
		assert.False(t, rec.HasScore())
		if !rec.HasRate() {
			missingRates++
		}
	}
	assert.Greater(t, missingRates, 0)
}

func TestGenerator_NormalizesCleanly(t *testing.T) {
	ds := NewGenerator(DefaultConfig()).Dataset("synthetic.csv")

	res := normalize.GroupedZScores(ds.Records, nil)

	assert.NotEmpty(t, res.Groups)
	for key, gs := range res.Groups {
		assert.False(t, gs.Degenerate, "group %s should have plenty of points", key)
	}
}

func TestGenerator_Tracking(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	samples := g.Tracking(1000, 25.0)

	require.Len(t, samples, 1000)
	assert.Equal(t, 0.0, samples[0].T)
	assert.InDelta(t, 1.0/25.0, samples[1].T-samples[0].T, 1e-12)
}
