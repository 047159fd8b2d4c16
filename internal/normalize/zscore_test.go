package normalize

import (
	"fmt"
	"math"
	"testing"

	"neuropipe/domain/recording"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	warnings []string
}

func (s *recordingSink) Warnf(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func (s *recordingSink) Infof(string, ...interface{}) {}

func rec(session, arena string, rate float64) recording.Record {
	return recording.Record{
		SessionID: recording.SessionID(session),
		ArenaType: recording.ArenaType(arena),
		MUARate:   rate,
		MUAZScore: math.NaN(),
	}
}

func TestGroupedZScores_EndToEnd(t *testing.T) {
	records := []recording.Record{
		rec("S1", "A", 10),
		rec("S1", "A", 20),
		rec("S1", "A", 30),
		rec("S1", "B", 5),
		rec("S2", "", 7),
	}

	sink := &recordingSink{}
	res := GroupedZScores(records, sink)

	require.Len(t, res.Scores, 5)

	// S1/A: mean=20, sample std=10
	assert.InDelta(t, -1.0, res.Scores[0], 1e-12)
	assert.InDelta(t, 0.0, res.Scores[1], 1e-12)
	assert.InDelta(t, 1.0, res.Scores[2], 1e-12)

	// S1/B is degenerate, S2 has no arena label
	assert.True(t, math.IsNaN(res.Scores[3]))
	assert.True(t, math.IsNaN(res.Scores[4]))

	// exactly one warning, naming the degenerate partition
	require.Equal(t, 1, res.Warnings)
	require.Len(t, sink.warnings, 1)
	assert.Contains(t, sink.warnings[0], "S1/B")
	assert.Contains(t, sink.warnings[0], "1 records")

	keyA := recording.GroupKey{Session: "S1", Arena: "A"}
	gs, ok := res.Groups[keyA]
	require.True(t, ok)
	assert.Equal(t, 3, gs.Size)
	assert.InDelta(t, 20.0, gs.Mean, 1e-12)
	assert.InDelta(t, 10.0, gs.Std, 1e-12)
	assert.False(t, gs.Degenerate)

	// input records are untouched
	for _, r := range records {
		assert.True(t, math.IsNaN(r.MUAZScore))
	}
}

func TestGroupedZScores_ZeroVariance(t *testing.T) {
	records := []recording.Record{
		rec("S3", "C", 5),
		rec("S3", "C", 5),
		rec("S3", "C", 5),
	}

	res := GroupedZScores(records, nil)

	for i := range records {
		assert.Equal(t, 0.0, res.Scores[i], "row %d", i)
	}

	gs := res.Groups[recording.GroupKey{Session: "S3", Arena: "C"}]
	assert.True(t, gs.ZeroVariance)
	assert.Equal(t, 0.0, gs.Std)
	assert.Equal(t, 0, res.Warnings)
}

func TestGroupedZScores_MissingRates(t *testing.T) {
	records := []recording.Record{
		rec("S1", "A", 10),
		rec("S1", "A", math.NaN()),
		rec("S1", "A", 30),
	}

	res := GroupedZScores(records, nil)

	// mean=20, sample std over {10,30} = sqrt(200)
	std := math.Sqrt(200)
	assert.InDelta(t, (10-20.0)/std, res.Scores[0], 1e-12)
	assert.True(t, math.IsNaN(res.Scores[1]), "missing rate stays missing")
	assert.InDelta(t, (30-20.0)/std, res.Scores[2], 1e-12)

	gs := res.Groups[recording.GroupKey{Session: "S1", Arena: "A"}]
	assert.Equal(t, 3, gs.Size)
	assert.Equal(t, 2, gs.Valid)
}

func TestGroupedZScores_TooFewValidRates(t *testing.T) {
	// three records but only one carries a rate
	records := []recording.Record{
		rec("S1", "A", 10),
		rec("S1", "A", math.NaN()),
		rec("S1", "A", math.NaN()),
	}

	sink := &recordingSink{}
	res := GroupedZScores(records, sink)

	for i := range records {
		assert.True(t, math.IsNaN(res.Scores[i]))
	}
	assert.Equal(t, 1, res.Warnings)
	require.Len(t, sink.warnings, 1)
	assert.Contains(t, sink.warnings[0], "1 valid rates")
}

func TestGroupedZScores_EmptyArenaNeverScored(t *testing.T) {
	records := []recording.Record{
		rec("S1", "", 10),
		rec("S1", "", 20),
		rec("S1", "", 30),
	}

	res := GroupedZScores(records, nil)

	for i := range records {
		assert.True(t, math.IsNaN(res.Scores[i]))
	}
	assert.Empty(t, res.Groups)
	assert.Equal(t, 0, res.Warnings, "exclusion is silent, not a warning")
}

func TestGroupedZScores_GroupMoments(t *testing.T) {
	records := []recording.Record{
		rec("S1", "A", 3.2), rec("S1", "A", 7.7), rec("S1", "A", 1.1),
		rec("S1", "A", 9.4), rec("S1", "A", 5.0),
		rec("S2", "A", 100), rec("S2", "A", 110), rec("S2", "A", 95),
	}

	res := GroupedZScores(records, nil)

	for key := range res.Groups {
		var scored []float64
		for i, r := range records {
			if k, ok := r.Key(); ok && k == key && !math.IsNaN(res.Scores[i]) {
				scored = append(scored, res.Scores[i])
			}
		}
		require.NotEmpty(t, scored, "group %s", key)

		n := float64(len(scored))
		var sum float64
		for _, v := range scored {
			sum += v
		}
		mean := sum / n
		var sumSq float64
		for _, v := range scored {
			sumSq += (v - mean) * (v - mean)
		}
		std := math.Sqrt(sumSq / (n - 1))

		assert.InDelta(t, 0.0, mean, 1e-10, "group %s mean", key)
		assert.InDelta(t, 1.0, std, 1e-10, "group %s std", key)
	}
}

func TestGroupedZScores_Idempotent(t *testing.T) {
	records := []recording.Record{
		rec("S1", "A", 10), rec("S1", "A", 20), rec("S1", "A", 30),
		rec("S1", "B", 5), rec("S1", "B", 6),
		rec("S2", "", 7),
	}

	first := GroupedZScores(records, nil)
	second := GroupedZScores(records, nil)

	require.Equal(t, len(first.Scores), len(second.Scores))
	for i := range first.Scores {
		if math.IsNaN(first.Scores[i]) {
			assert.True(t, math.IsNaN(second.Scores[i]), "row %d", i)
			continue
		}
		assert.Equal(t, first.Scores[i], second.Scores[i], "row %d", i)
	}
}

func TestGroupedZScores_SessionSeparatorDoesNotCollide(t *testing.T) {
	// "S1/A" + "B" and "S1" + "A/B" would collide under string keys
	records := []recording.Record{
		rec("S1/A", "B", 1), rec("S1/A", "B", 2), rec("S1/A", "B", 3),
		rec("S1", "A/B", 100), rec("S1", "A/B", 200), rec("S1", "A/B", 300),
	}

	res := GroupedZScores(records, nil)

	require.Len(t, res.Groups, 2)
	assert.InDelta(t, -1.0, res.Scores[0], 1e-12)
	assert.InDelta(t, -1.0, res.Scores[3], 1e-12)
}

func TestApply(t *testing.T) {
	ds := &recording.Dataset{
		Records: []recording.Record{
			rec("S1", "A", 10), rec("S1", "A", 20), rec("S1", "A", 30),
			rec("S2", "", 7),
		},
	}

	res := GroupedZScores(ds.Records, nil)
	scored := Apply(ds, res)

	assert.Equal(t, 3, scored)
	assert.InDelta(t, -1.0, ds.Records[0].MUAZScore, 1e-12)
	assert.True(t, math.IsNaN(ds.Records[3].MUAZScore))
}
