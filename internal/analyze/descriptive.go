// Package analyze computes the read-only statistics reported after
// normalization: dataset counts, partition size distribution, arena
// comparisons, and per-session time-course fits.
package analyze

import (
	"math"

	"neuropipe/domain/recording"
	"neuropipe/internal/normalize"

	"github.com/montanaflynn/stats"
)

// SizeDistribution summarizes partition sizes.
type SizeDistribution struct {
	Mean   float64
	Median float64
	Min    int
	Max    int
}

// Summary is the validation report over an already-normalized dataset.
// Purely observational: nothing here mutates the dataset.
type Summary struct {
	TotalRows      int
	ValidArenaRows int
	ScoredRows     int

	GroupCount      int
	DegenerateCount int
	GroupSizes      SizeDistribution

	// Aggregate moments of the derived column. Near 0/1 only in the
	// aggregate-of-groups sense; not a hard invariant across groups of
	// different sizes.
	GlobalScoreMean float64
	GlobalScoreStd  float64
}

// Summarize computes the validation report from the dataset and the
// normalizer result.
func Summarize(ds *recording.Dataset, res normalize.Result) Summary {
	s := Summary{
		TotalRows:       ds.RowCount(),
		GroupCount:      len(res.Groups),
		GlobalScoreMean: math.NaN(),
		GlobalScoreStd:  math.NaN(),
	}

	for _, rec := range ds.Records {
		if rec.HasArena() {
			s.ValidArenaRows++
		}
	}

	var scored []float64
	for _, z := range res.Scores {
		if !math.IsNaN(z) {
			scored = append(scored, z)
		}
	}
	s.ScoredRows = len(scored)

	var sizes []float64
	for _, gs := range res.Groups {
		sizes = append(sizes, float64(gs.Size))
		if gs.Degenerate {
			s.DegenerateCount++
		}
	}

	if len(sizes) > 0 {
		mean, _ := stats.Mean(sizes)
		median, _ := stats.Median(sizes)
		minSize, _ := stats.Min(sizes)
		maxSize, _ := stats.Max(sizes)
		s.GroupSizes = SizeDistribution{
			Mean:   mean,
			Median: median,
			Min:    int(minSize),
			Max:    int(maxSize),
		}
	}

	if len(scored) > 0 {
		s.GlobalScoreMean, _ = stats.Mean(scored)
	}
	if len(scored) > 1 {
		s.GlobalScoreStd, _ = stats.StandardDeviationSample(scored)
	}

	return s
}
