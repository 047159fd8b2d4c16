// Package extract turns raw video-tracking samples into cleaned locomotion
// speed and behavioural-state labels.
package extract

import (
	"math"
)

// Sample is one tracked position frame. Coordinates in cm, time in seconds.
// NaN coordinates mark frames the tracker lost.
type Sample struct {
	T float64
	X float64
	Y float64
}

// Speeds computes instantaneous speed (cm/s) between consecutive samples.
// The first frame and any frame adjacent to a lost position are NaN.
func Speeds(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	if len(out) > 0 {
		out[0] = math.NaN()
	}
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		dt := cur.T - prev.T
		if dt <= 0 || math.IsNaN(prev.X) || math.IsNaN(prev.Y) || math.IsNaN(cur.X) || math.IsNaN(cur.Y) {
			out[i] = math.NaN()
			continue
		}
		dx := cur.X - prev.X
		dy := cur.Y - prev.Y
		out[i] = math.Hypot(dx, dy) / dt
	}
	return out
}

// RemoveArtifacts drops speeds above ceiling (tracking jumps register as
// impossibly fast movement) and bridges the resulting gaps by linear
// interpolation, up to maxGap consecutive frames. Longer gaps stay missing.
func RemoveArtifacts(speeds []float64, ceiling float64, maxGap int) []float64 {
	cleaned := make([]float64, len(speeds))
	for i, v := range speeds {
		if !math.IsNaN(v) && v > ceiling {
			cleaned[i] = math.NaN()
		} else {
			cleaned[i] = v
		}
	}
	return Interpolate(cleaned, maxGap)
}

// Interpolate fills NaN runs of at most maxGap frames by linear
// interpolation between the surrounding valid values. Runs touching either
// end of the trace are left missing.
func Interpolate(vals []float64, maxGap int) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)

	i := 0
	for i < len(out) {
		if !math.IsNaN(out[i]) {
			i++
			continue
		}
		start := i
		for i < len(out) && math.IsNaN(out[i]) {
			i++
		}
		end := i // first valid index after the run, or len(out)

		gap := end - start
		if start == 0 || end == len(out) || gap > maxGap {
			continue
		}
		lo := out[start-1]
		hi := out[end]
		for j := start; j < end; j++ {
			frac := float64(j-start+1) / float64(gap+1)
			out[j] = lo + (hi-lo)*frac
		}
	}
	return out
}

// Smooth applies a centered moving average of the given window width,
// skipping missing values. A frame with no valid neighbor in its window
// stays NaN. Even windows are widened by one to stay centered.
func Smooth(vals []float64, window int) []float64 {
	if window < 2 {
		out := make([]float64, len(vals))
		copy(out, vals)
		return out
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	out := make([]float64, len(vals))
	for i := range vals {
		sum := 0.0
		n := 0
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= len(vals) || math.IsNaN(vals[j]) {
				continue
			}
			sum += vals[j]
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(n)
		}
	}
	return out
}
