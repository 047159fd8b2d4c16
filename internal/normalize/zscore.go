// Package normalize computes the per-group standardization of the MUA rate
// column: records are partitioned by (session, arena) and each partition is
// z-scored against its own mean and sample standard deviation.
package normalize

import (
	"log"
	"math"

	"neuropipe/domain/recording"

	"github.com/montanaflynn/stats"
)

// Sink receives progress and warning messages from the normalizer. The
// computation never writes to the console directly; callers decide where
// messages go.
type Sink interface {
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// LogSink writes messages to the standard logger.
type LogSink struct{}

func (LogSink) Warnf(format string, args ...interface{}) {
	log.Printf("WARNING: "+format, args...)
}

func (LogSink) Infof(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// NopSink discards all messages.
type NopSink struct{}

func (NopSink) Warnf(string, ...interface{}) {}
func (NopSink) Infof(string, ...interface{}) {}

// GroupStats describes one (session, arena) partition after normalization.
type GroupStats struct {
	Key          recording.GroupKey
	Size         int     // records in the partition
	Valid        int     // records with a non-missing rate
	Mean         float64 // NaN when degenerate
	Std          float64 // sample (ddof=1), NaN when degenerate
	Degenerate   bool    // too few valid points, all scores left missing
	ZeroVariance bool    // constant rate, all scores set to 0
}

// Result holds the derived column and per-group bookkeeping.
type Result struct {
	// Scores is parallel to the input records. NaN marks excluded rows,
	// missing rates, and degenerate partitions.
	Scores []float64

	Groups   map[recording.GroupKey]GroupStats
	Warnings int
}

// GroupedZScores standardizes MUARate within each (session, arena)
// partition. Records with an unset arena type are excluded outright and
// never receive a score. The input records are not modified.
//
// Degenerate partitions (fewer than 2 records, or fewer than 2 non-missing
// rates) produce one warning each and NaN scores; they never abort the run.
// A zero-variance partition maps every present rate to a score of exactly 0.
func GroupedZScores(records []recording.Record, sink Sink) Result {
	if sink == nil {
		sink = NopSink{}
	}

	res := Result{
		Scores: make([]float64, len(records)),
		Groups: make(map[recording.GroupKey]GroupStats),
	}
	for i := range res.Scores {
		res.Scores[i] = math.NaN()
	}

	groups := make(map[recording.GroupKey][]int)
	for i, rec := range records {
		key, ok := rec.Key()
		if !ok {
			continue // defined exclusion, not an error
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range recording.SortedGroupKeys(groups) {
		rows := groups[key]
		res.Groups[key] = normalizeGroup(key, rows, records, res.Scores, sink, &res.Warnings)
	}

	return res
}

func normalizeGroup(key recording.GroupKey, rows []int, records []recording.Record, scores []float64, sink Sink, warnings *int) GroupStats {
	gs := GroupStats{
		Key:  key,
		Size: len(rows),
		Mean: math.NaN(),
		Std:  math.NaN(),
	}

	var values []float64
	for _, i := range rows {
		if records[i].HasRate() {
			values = append(values, records[i].MUARate)
		}
	}
	gs.Valid = len(values)

	if gs.Size < 2 || gs.Valid < 2 {
		gs.Degenerate = true
		*warnings++
		sink.Warnf("group %s is degenerate (%d records, %d valid rates); z-scores left missing", key, gs.Size, gs.Valid)
		return gs
	}

	mean, _ := stats.Mean(values)
	std, _ := stats.StandardDeviationSample(values)
	gs.Mean = mean
	gs.Std = std

	if std == 0 {
		// All rates identical: defined policy is 0, not a divide-by-zero.
		gs.ZeroVariance = true
		for _, i := range rows {
			if records[i].HasRate() {
				scores[i] = 0
			}
		}
		return gs
	}

	for _, i := range rows {
		if records[i].HasRate() {
			scores[i] = (records[i].MUARate - mean) / std
		}
	}
	return gs
}

// Apply writes the derived column back onto a dataset, returning the number
// of rows that received a score.
func Apply(ds *recording.Dataset, res Result) int {
	scored := 0
	for i := range ds.Records {
		ds.Records[i].MUAZScore = res.Scores[i]
		if !math.IsNaN(res.Scores[i]) {
			scored++
		}
	}
	return scored
}
