package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"neuropipe/domain/recording"
	"neuropipe/internal/analyze"
	"neuropipe/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		DatasetPath: "/data/recordings.csv",
		GeneratedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Summary: analyze.Summary{
			TotalRows:      7,
			ValidArenaRows: 6,
			ScoredRows:     6,
			GroupCount:     2,
			GroupSizes:     analyze.SizeDistribution{Mean: 3, Median: 3, Min: 3, Max: 3},
		},
		Groups: []normalize.GroupStats{
			{Key: recording.GroupKey{Session: "S1", Arena: "A"}, Size: 3, Valid: 3, Mean: 20, Std: 10},
			{Key: recording.GroupKey{Session: "S1", Arena: "B"}, Size: 1, Valid: 1,
				Mean: math.NaN(), Std: math.NaN(), Degenerate: true},
		},
		Welch: &analyze.WelchResult{
			ArenaA: "A", ArenaB: "B", NA: 3, NB: 3,
			T: -2.5, DF: 3.9, P: 0.07,
		},
		Fits: []analyze.SessionFit{
			{Session: "S1", N: 6, Intercept: 0.1, Slope: 0.02},
		},
		PooledSlopeMean: 0.02,
		PooledSlopeStd:  math.NaN(),
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := sampleReport().Markdown()

	assert.Contains(t, md, "# Pipeline run report")
	assert.Contains(t, md, "| total rows | 7 |")
	assert.Contains(t, md, "degenerate, scores left missing")
	assert.Contains(t, md, "Welch's t-test")
	assert.Contains(t, md, "## Session time-courses")
	assert.Contains(t, md, "0.0200")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, err := sampleReport().Write(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Filename), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "recordings.csv")
}

func TestGroupsInOrder(t *testing.T) {
	res := normalize.Result{
		Groups: map[recording.GroupKey]normalize.GroupStats{
			{Session: "S2", Arena: "A"}: {Size: 1},
			{Session: "S1", Arena: "B"}: {Size: 2},
			{Session: "S1", Arena: "A"}: {Size: 3},
		},
	}

	groups := GroupsInOrder(res)

	require.Len(t, groups, 3)
	assert.Equal(t, 3, groups[0].Size)
	assert.Equal(t, 2, groups[1].Size)
	assert.Equal(t, 1, groups[2].Size)
}
