package extract

import (
	"math"
	"testing"

	"neuropipe/domain/behavior"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStates_Thresholds(t *testing.T) {
	speed := []float64{0.5, 3.0, 10.0, math.NaN()}

	states := ClassifyStates(speed, 2.0, 5.0, 1)

	assert.Equal(t, behavior.StateImmobile, states[0])
	assert.Equal(t, behavior.StateIntermediate, states[1])
	assert.Equal(t, behavior.StateLocomotion, states[2])
	assert.Equal(t, behavior.StateUnknown, states[3])
}

func TestClassifyStates_MinBoutSuppression(t *testing.T) {
	// a 2-frame locomotion blip inside an immobile stretch
	speed := []float64{0.5, 0.5, 0.5, 10, 10, 0.5, 0.5, 0.5}

	states := ClassifyStates(speed, 2.0, 5.0, 3)

	for i, s := range states {
		assert.Equal(t, behavior.StateImmobile, s, "frame %d", i)
	}
}

func TestClassifyStates_LongBoutsSurvive(t *testing.T) {
	speed := []float64{0.5, 0.5, 0.5, 10, 10, 10, 0.5, 0.5, 0.5}

	states := ClassifyStates(speed, 2.0, 5.0, 3)

	assert.Equal(t, behavior.StateLocomotion, states[3])
	assert.Equal(t, behavior.StateLocomotion, states[5])
	assert.Equal(t, behavior.StateImmobile, states[6])
}

func TestClassifyStates_UnknownNeverAbsorbs(t *testing.T) {
	speed := []float64{math.NaN(), 10, 0.5, 0.5, 0.5}

	states := ClassifyStates(speed, 2.0, 5.0, 3)

	assert.Equal(t, behavior.StateUnknown, states[0])
	// the short locomotion run follows an unknown bout, so it keeps its label
	assert.Equal(t, behavior.StateLocomotion, states[1])
}

func TestBouts(t *testing.T) {
	states := []behavior.State{
		behavior.StateImmobile, behavior.StateImmobile,
		behavior.StateLocomotion,
		behavior.StateImmobile,
	}

	bouts := Bouts(states)

	require.Len(t, bouts, 3)
	assert.Equal(t, behavior.Bout{State: behavior.StateImmobile, Start: 0, End: 1}, bouts[0])
	assert.Equal(t, 1, bouts[1].Len())
	assert.Equal(t, 3, bouts[2].Start)
}

func TestStateFractions(t *testing.T) {
	states := []behavior.State{
		behavior.StateImmobile, behavior.StateImmobile, behavior.StateImmobile,
		behavior.StateLocomotion,
		behavior.StateUnknown, behavior.StateUnknown,
	}

	fractions := StateFractions(states)

	assert.InDelta(t, 0.75, fractions[behavior.StateImmobile], 1e-9)
	assert.InDelta(t, 0.25, fractions[behavior.StateLocomotion], 1e-9)
	_, hasUnknown := fractions[behavior.StateUnknown]
	assert.False(t, hasUnknown, "unknown frames are excluded")
}
