package extract

import (
	"math"

	"neuropipe/domain/behavior"
)

// ClassifyStates labels each frame by thresholding smoothed speed:
// immobile below immobileBelow, locomotion above locomotionAbove,
// intermediate between. Frames without a valid speed stay unknown.
// Runs shorter than minBout frames are absorbed into the preceding bout to
// suppress flicker at the thresholds.
func ClassifyStates(speed []float64, immobileBelow, locomotionAbove float64, minBout int) []behavior.State {
	states := make([]behavior.State, len(speed))
	for i, v := range speed {
		switch {
		case math.IsNaN(v):
			states[i] = behavior.StateUnknown
		case v < immobileBelow:
			states[i] = behavior.StateImmobile
		case v > locomotionAbove:
			states[i] = behavior.StateLocomotion
		default:
			states[i] = behavior.StateIntermediate
		}
	}
	if minBout > 1 {
		states = suppressShortBouts(states, minBout)
	}
	return states
}

// suppressShortBouts relabels runs shorter than minBout with the state of
// the preceding bout. Unknown runs are never relabeled and never absorb
// neighbors; the leading run keeps its label regardless of length.
func suppressShortBouts(states []behavior.State, minBout int) []behavior.State {
	out := make([]behavior.State, len(states))
	copy(out, states)

	i := 0
	for i < len(out) {
		start := i
		cur := out[i]
		for i < len(out) && out[i] == cur {
			i++
		}
		runLen := i - start
		if runLen >= minBout || cur == behavior.StateUnknown || start == 0 {
			continue
		}
		prev := out[start-1]
		if prev == behavior.StateUnknown {
			continue
		}
		for j := start; j < start+runLen; j++ {
			out[j] = prev
		}
	}
	return out
}

// Bouts collapses per-frame labels into maximal same-state runs.
func Bouts(states []behavior.State) []behavior.Bout {
	var bouts []behavior.Bout
	i := 0
	for i < len(states) {
		start := i
		cur := states[i]
		for i < len(states) && states[i] == cur {
			i++
		}
		bouts = append(bouts, behavior.Bout{State: cur, Start: start, End: i - 1})
	}
	return bouts
}

// StateFractions returns the fraction of labeled frames spent in each state.
// Unknown frames are excluded from the denominator.
func StateFractions(states []behavior.State) map[behavior.State]float64 {
	counts := make(map[behavior.State]int)
	labeled := 0
	for _, s := range states {
		if s == behavior.StateUnknown {
			continue
		}
		counts[s]++
		labeled++
	}
	fractions := make(map[behavior.State]float64, len(counts))
	if labeled == 0 {
		return fractions
	}
	for s, c := range counts {
		fractions[s] = float64(c) / float64(labeled)
	}
	return fractions
}
