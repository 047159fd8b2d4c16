package analyze

import (
	"math"

	"neuropipe/domain/recording"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// SessionFit is a per-session linear fit of z-scored MUA against time.
// Sessions act as the grouping factor; pooling the slopes gives the
// fixed-effects read on whether activity drifts within sessions.
type SessionFit struct {
	Session   recording.SessionID
	N         int
	Intercept float64
	Slope     float64 // z-score units per minute
}

// SessionTimeCourses fits each session with at least minPoints scored rows.
// Sessions with fewer are skipped.
func SessionTimeCourses(ds *recording.Dataset, minPoints int) []SessionFit {
	if minPoints < 2 {
		minPoints = 2
	}

	var fits []SessionFit
	for _, session := range ds.Sessions() {
		var xs, ys []float64
		for _, i := range ds.SessionRows(session) {
			rec := ds.Records[i]
			if !rec.HasScore() {
				continue
			}
			xs = append(xs, rec.TimeMin)
			ys = append(ys, rec.MUAZScore)
		}
		if len(xs) < minPoints {
			continue
		}

		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		if math.IsNaN(alpha) || math.IsNaN(beta) {
			continue
		}
		fits = append(fits, SessionFit{
			Session:   session,
			N:         len(xs),
			Intercept: alpha,
			Slope:     beta,
		})
	}
	return fits
}

// PooledSlope returns the mean and sample standard deviation of the
// per-session slopes.
func PooledSlope(fits []SessionFit) (mean, std float64) {
	if len(fits) == 0 {
		return math.NaN(), math.NaN()
	}
	slopes := make([]float64, len(fits))
	for i, f := range fits {
		slopes[i] = f.Slope
	}
	mean, _ = stats.Mean(slopes)
	if len(slopes) > 1 {
		std, _ = stats.StandardDeviationSample(slopes)
	} else {
		std = math.NaN()
	}
	return mean, std
}
