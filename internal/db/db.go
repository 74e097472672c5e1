// Package db persists generated datasets to SQLite so runs can be queried
// and compared after the CSV has been handed off.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pdwgen/internal/pdw"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

var pragmas = []string{
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
	"PRAGMA journal_mode=WAL",
}

type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and migrates it to the
// latest schema.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Run is one stored generation run.
type Run struct {
	ID            uuid.UUID
	Seed          uint64
	CreatedAt     time.Time
	NumSystems    int
	BaseRows      int
	DuplicateRows int
	CorruptedRows int
	TotalRows     int
}

// NewRun returns a Run with a fresh ID.
func NewRun(seed uint64, createdAt time.Time) Run {
	return Run{ID: uuid.New(), Seed: seed, CreatedAt: createdAt.UTC()}
}

// SaveRun stores run and its records in one transaction. Row order is kept
// in row_index.
func (db *DB) SaveRun(ctx context.Context, run Run, records []pdw.Record) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// seed is stored bit-for-bit as a signed integer.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, seed, created_at, num_systems,
			base_rows, duplicate_rows, corrupted_rows, total_rows
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), int64(run.Seed), run.CreatedAt.UTC().Format(time.RFC3339Nano), run.NumSystems,
		run.BaseRows, run.DuplicateRows, run.CorruptedRows, len(records),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pulses (
			run_id, row_index, timestamp, emitter_id, radar_function,
			rf_mhz, pw_us, pri_us, amplitude_db, doa_deg, location_mgrs
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	id := run.ID.String()
	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			id, i, r.Timestamp.UTC().Format(pdw.TimestampLayout), r.EmitterID, r.Function,
			r.RF, r.PW, r.PRI, r.Amplitude, r.DOA, r.Location,
		)
		if err != nil {
			return fmt.Errorf("failed to insert pulse %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetRun loads the run header for id.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var (
		run       Run
		seed      int64
		createdAt string
	)
	err := db.QueryRowContext(ctx, `
		SELECT seed, created_at, num_systems, base_rows, duplicate_rows, corrupted_rows, total_rows
		FROM runs WHERE run_id = ?`, id.String()).
		Scan(&seed, &createdAt, &run.NumSystems, &run.BaseRows, &run.DuplicateRows, &run.CorruptedRows, &run.TotalRows)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	run.ID = id
	run.Seed = uint64(seed)
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	return &run, nil
}

// CountPulses returns the number of stored rows for a run.
func (db *DB) CountPulses(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pulses WHERE run_id = ?`, id.String()).Scan(&n)
	return n, err
}

// EmitterCounts returns stored rows per emitter, duplicates included.
func (db *DB) EmitterCounts(ctx context.Context, id uuid.UUID) (map[int]int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT emitter_id, COUNT(*) FROM pulses
		WHERE run_id = ? GROUP BY emitter_id`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int]int{}
	for rows.Next() {
		var emitter, n int
		if err := rows.Scan(&emitter, &n); err != nil {
			return nil, err
		}
		out[emitter] = n
	}
	return out, rows.Err()
}

// MissingCounts returns the number of NULL values per measurement field.
func (db *DB) MissingCounts(ctx context.Context, id uuid.UUID) (map[pdw.Field]int, error) {
	var rf, pw, pri, amp, doa int
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(rf_mhz IS NULL), 0),
			COALESCE(SUM(pw_us IS NULL), 0),
			COALESCE(SUM(pri_us IS NULL), 0),
			COALESCE(SUM(amplitude_db IS NULL), 0),
			COALESCE(SUM(doa_deg IS NULL), 0)
		FROM pulses WHERE run_id = ?`, id.String()).Scan(&rf, &pw, &pri, &amp, &doa)
	if err != nil {
		return nil, err
	}
	return map[pdw.Field]int{
		pdw.FieldRF:        rf,
		pdw.FieldPW:        pw,
		pdw.FieldPRI:       pri,
		pdw.FieldAmplitude: amp,
		pdw.FieldDOA:       doa,
	}, nil
}

// LoadPulses returns a run's records in their stored order.
func (db *DB) LoadPulses(ctx context.Context, id uuid.UUID) ([]pdw.Record, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT timestamp, emitter_id, radar_function,
			rf_mhz, pw_us, pri_us, amplitude_db, doa_deg, location_mgrs
		FROM pulses WHERE run_id = ? ORDER BY row_index`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pdw.Record
	for rows.Next() {
		var (
			r  pdw.Record
			ts string
		)
		if err := rows.Scan(&ts, &r.EmitterID, &r.Function,
			&r.RF, &r.PW, &r.PRI, &r.Amplitude, &r.DOA, &r.Location); err != nil {
			return nil, err
		}
		if r.Timestamp, err = time.Parse(pdw.TimestampLayout, ts); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
