package analyze

import (
	"math"

	"neuropipe/domain/core"
	"neuropipe/domain/recording"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchResult is a two-sample comparison of z-scored MUA between arena
// types, unequal variances assumed.
type WelchResult struct {
	ArenaA recording.ArenaType
	ArenaB recording.ArenaType
	NA     int
	NB     int
	MeanA  float64
	MeanB  float64
	T      float64
	DF     float64
	P      float64
}

// CompareArenas runs Welch's t-test on the derived column between two arena
// labels. Rows without a computed score are ignored.
func CompareArenas(ds *recording.Dataset, a, b recording.ArenaType) (*WelchResult, error) {
	sa := scoredValues(ds, a)
	sb := scoredValues(ds, b)

	t, df, p, err := WelchT(sa, sb)
	if err != nil {
		return nil, err
	}

	meanA, _ := stats.Mean(sa)
	meanB, _ := stats.Mean(sb)

	return &WelchResult{
		ArenaA: a,
		ArenaB: b,
		NA:     len(sa),
		NB:     len(sb),
		MeanA:  meanA,
		MeanB:  meanB,
		T:      t,
		DF:     df,
		P:      p,
	}, nil
}

// WelchT computes Welch's t statistic, Satterthwaite degrees of freedom, and
// a two-sided p-value from the Student's t distribution.
func WelchT(a, b []float64) (t, df, p float64, err error) {
	if len(a) < 2 || len(b) < 2 {
		return 0, 0, 0, core.ErrInsufficientData
	}

	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	na := float64(len(a))
	nb := float64(len(b))
	sa := varA / na
	sb := varB / nb
	se := math.Sqrt(sa + sb)
	if se == 0 {
		return 0, 0, 0, core.ErrInsufficientData
	}

	t = (meanA - meanB) / se
	df = (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))

	return t, df, p, nil
}

func scoredValues(ds *recording.Dataset, arena recording.ArenaType) []float64 {
	var vals []float64
	for _, i := range ds.ArenaRows(arena) {
		if ds.Records[i].HasScore() {
			vals = append(vals, ds.Records[i].MUAZScore)
		}
	}
	return vals
}
