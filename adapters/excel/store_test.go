package excel

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"neuropipe/domain/recording"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSVFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "dataset.csv")
	contents := "session_id,arena_type,mua_rate,time_min,genotype\n" +
		"S1,A,10,0.0,wt\n" +
		"S1,A,20,0.5,wt\n" +
		"S1,A,30,1.0,wt\n" +
		"S2,,7,0.0,ko\n" +
		"S2,B,,0.5,ko\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestTableStore_LoadDecodesColumns(t *testing.T) {
	path := writeCSVFixture(t, t.TempDir())
	store := NewTableStore(path)

	ds, err := store.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Records, 5)
	assert.Equal(t, recording.SessionID("S1"), ds.Records[0].SessionID)
	assert.Equal(t, recording.ArenaType("A"), ds.Records[0].ArenaType)
	assert.Equal(t, 10.0, ds.Records[0].MUARate)
	assert.Equal(t, 0.5, ds.Records[1].TimeMin)

	// empty arena and empty rate decode to their missing representations
	assert.False(t, ds.Records[3].HasArena())
	assert.True(t, math.IsNaN(ds.Records[4].MUARate))

	// covariate columns are preserved
	assert.Equal(t, "ko", ds.Records[3].Extra["genotype"])

	// z-score column starts missing
	for _, rec := range ds.Records {
		assert.False(t, rec.HasScore())
	}
}

func TestTableStore_LoadMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("session_id,mua_rate\nS1,10\n"), 0644))

	_, err := NewTableStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arena_type")
}

func TestTableStore_SaveWritesBackupThenOverwrites(t *testing.T) {
	path := writeCSVFixture(t, t.TempDir())
	store := NewTableStore(path)
	store.now = func() time.Time {
		return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	ctx := context.Background()
	ds, err := store.Load(ctx)
	require.NoError(t, err)

	ds.Records[0].MUAZScore = -1.0
	require.NoError(t, store.Save(ctx, ds))

	backup := store.BackupPath(store.now())
	assert.Equal(t, "dataset_backup_20260314T150926.csv", filepath.Base(backup))
	original, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Contains(t, string(original), "genotype")
	assert.NotContains(t, string(original), "mua_zscore")

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1.0, reloaded.Records[0].MUAZScore)
	assert.Equal(t, "wt", reloaded.Records[0].Extra["genotype"])
}

func TestTableStore_SaveProceedsWhenBackupFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fresh.csv")

	// no pre-existing file at path: the backup copy must fail, the save
	// must still succeed
	store := NewTableStore(path)
	ds := &recording.Dataset{
		Path:    path,
		Headers: []string{"session_id", "arena_type", "mua_rate", "time_min"},
		Records: []recording.Record{
			{SessionID: "S1", ArenaType: "A", MUARate: 1, MUAZScore: math.NaN()},
		},
	}

	require.NoError(t, store.Save(context.Background(), ds))

	_, err := os.Stat(path)
	assert.NoError(t, err, "primary save must have completed")
}

func TestEncode_AppendsScoreColumnOnce(t *testing.T) {
	ds := &recording.Dataset{
		Headers: []string{"session_id", "arena_type", "mua_rate", "time_min", "mua_zscore"},
		Records: []recording.Record{
			{SessionID: "S1", ArenaType: "A", MUARate: 1, TimeMin: 0, MUAZScore: 0.5},
		},
	}

	data := Encode(ds)
	assert.Equal(t, ds.Headers, data.Headers, "existing score column is not duplicated")
	assert.Equal(t, "0.5", data.Rows[0]["mua_zscore"])
}

func TestRoundTrip_ExcelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.xlsx")

	store := NewTableStore(path)
	ds := &recording.Dataset{
		Path:    path,
		Headers: []string{"session_id", "arena_type", "mua_rate", "time_min"},
		Records: []recording.Record{
			{SessionID: "S1", ArenaType: "A", MUARate: 12.5, TimeMin: 0, MUAZScore: math.NaN()},
			{SessionID: "S1", ArenaType: "A", MUARate: math.NaN(), TimeMin: 0.5, MUAZScore: math.NaN()},
		},
	}

	require.NoError(t, store.Save(context.Background(), ds))

	reloaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reloaded.Records, 2)
	assert.Equal(t, 12.5, reloaded.Records[0].MUARate)
	assert.True(t, math.IsNaN(reloaded.Records[1].MUARate))
}
