package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pdwgen/internal/pdw"
	"github.com/banshee-data/pdwgen/internal/testutil"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	testutil.QuietLogs(t)

	db, err := Open(filepath.Join(t.TempDir(), "pdw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecords() []pdw.Record {
	ts := time.Date(2025, time.December, 1, 8, 30, 0, 0, time.UTC)
	mk := func(id int, sec int) pdw.Record {
		return pdw.Record{
			Timestamp: ts.Add(time.Duration(sec) * time.Second),
			EmitterID: id,
			Function:  "Air Search Radar",
			RF:        pdw.Valid(3000.5),
			PW:        pdw.Valid(2),
			PRI:       pdw.Valid(1000),
			Amplitude: pdw.Valid(11.25),
			DOA:       pdw.Valid(44),
			Location:  "51RTP105225",
		}
	}
	recs := []pdw.Record{mk(1, 0), mk(1, 7), mk(2, 3), mk(1, 7)}
	recs[1].Clear(pdw.FieldRF)
	recs[2].Clear(pdw.FieldDOA)
	return recs
}

func TestOpenMigratesToLatest(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(LatestVersion), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='pulses'`).Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, db.MigrateUp())
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='pulses'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSaveAndQueryRun(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created := time.Date(2026, time.January, 2, 3, 4, 5, 600, time.UTC)
	run := NewRun(^uint64(0)-5, created)
	run.NumSystems = 2
	run.BaseRows = 3
	run.DuplicateRows = 1
	run.CorruptedRows = 2
	records := testRecords()

	require.NoError(t, db.SaveRun(ctx, run, records))

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	want := run
	want.TotalRows = len(records)
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}

	n, err := db.CountPulses(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	counts, err := db.EmitterCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 3, 2: 1}, counts)

	missing, err := db.MissingCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, missing[pdw.FieldRF])
	assert.Equal(t, 1, missing[pdw.FieldDOA])
	assert.Zero(t, missing[pdw.FieldPRI])

	loaded, err := db.LoadPulses(ctx, run.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(records, loaded); diff != "" {
		t.Errorf("pulses did not round-trip (-want +got):\n%s", diff)
	}
}

func TestRunsAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := NewRun(1, time.Now())
	b := NewRun(2, time.Now())
	require.NoError(t, db.SaveRun(ctx, a, testRecords()))
	require.NoError(t, db.SaveRun(ctx, b, testRecords()[:1]))

	n, err := db.CountPulses(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetRunMissing(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)

	n, err := db.CountPulses(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveRunDuplicateIDRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := NewRun(9, time.Now())
	require.NoError(t, db.SaveRun(ctx, run, testRecords()))
	assert.Error(t, db.SaveRun(ctx, run, testRecords()))

	n, err := db.CountPulses(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "failed save must not add rows")
}
