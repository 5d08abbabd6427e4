package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"faceangle/internal/analysis"
	"faceangle/internal/classify"
	"faceangle/internal/dataset"
)

// ErrNotFound signals a missing run.
var ErrNotFound = errors.New("run not found")

// Run describes one persisted analysis run.
type Run struct {
	ID           string
	Partition    dataset.Partition
	CreatedAt    time.Time
	Multiplier   float64
	MinThreshold float64
	Source       string
}

// Store manages result persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the results database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure results directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    partition     TEXT NOT NULL,
    created_at    TEXT NOT NULL,
    multiplier    REAL NOT NULL,
    min_threshold REAL NOT NULL,
    source        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS results (
    run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    blendshape  TEXT NOT NULL,
    level       TEXT NOT NULL,
    camera      TEXT NOT NULL,
    intercept   REAL NOT NULL,
    effect      REAL NOT NULL,
    effect_pct  INTEGER NOT NULL,
    std_err     REAL NOT NULL,
    t_stat      REAL NOT NULL,
    p_value     REAL NOT NULL,
    correlation REAL NOT NULL,
    num_groups  INTEGER NOT NULL,
    samples     INTEGER NOT NULL,
    PRIMARY KEY (run_id, blendshape, level)
);

CREATE INDEX IF NOT EXISTS idx_results_run_level ON results(run_id, level);
`

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveRun persists one analysis run and its result records atomically. A
// missing run ID or timestamp is filled in.
func (s *Store) SaveRun(ctx context.Context, run Run, records []analysis.Record) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, partition, created_at, multiplier, min_threshold, source)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Partition), run.CreatedAt.Format(time.RFC3339Nano),
		run.Multiplier, run.MinThreshold, run.Source,
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	for _, record := range records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO results (
                run_id, blendshape, level, camera, intercept, effect, effect_pct,
                std_err, t_stat, p_value, correlation, num_groups, samples
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, record.Blendshape, string(record.Level), string(record.Camera),
			record.Intercept, record.Effect, record.EffectPct,
			record.StdErr, record.TStat, record.PValue,
			record.Correlation, record.NumGroups, record.Samples,
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert result %s/%s: %w", record.Blendshape, record.Level, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, partition, created_at, multiplier, min_threshold, source
         FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by identifier.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, partition, created_at, multiplier, min_threshold, source
         FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// LatestRun returns the newest run for a partition.
func (s *Store) LatestRun(ctx context.Context, partition dataset.Partition) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, partition, created_at, multiplier, min_threshold, source
         FROM runs WHERE partition = ? ORDER BY created_at DESC LIMIT 1`, string(partition))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: partition %s", ErrNotFound, partition)
	}
	return run, err
}

// RunRecords returns a run's result records, optionally filtered to one
// activation level (empty level means all).
func (s *Store) RunRecords(ctx context.Context, runID string, level classify.Activation) ([]analysis.Record, error) {
	query := `SELECT blendshape, level, camera, intercept, effect, effect_pct,
                     std_err, t_stat, p_value, correlation, num_groups, samples
              FROM results WHERE run_id = ?`
	args := []any{runID}
	if level != "" {
		query += ` AND level = ?`
		args = append(args, string(level))
	}
	query += ` ORDER BY level, blendshape`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var records []analysis.Record
	for rows.Next() {
		var record analysis.Record
		var recordLevel, camera string
		if err := rows.Scan(
			&record.Blendshape, &recordLevel, &camera,
			&record.Intercept, &record.Effect, &record.EffectPct,
			&record.StdErr, &record.TStat, &record.PValue,
			&record.Correlation, &record.NumGroups, &record.Samples,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		record.Level = classify.Activation(recordLevel)
		record.Camera = dataset.Camera(camera)
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (Run, error) {
	var run Run
	var partition, createdAt string
	if err := scanner.Scan(&run.ID, &partition, &createdAt, &run.Multiplier, &run.MinThreshold, &run.Source); err != nil {
		return Run{}, err
	}
	run.Partition = dataset.Partition(partition)
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run timestamp: %w", err)
	}
	run.CreatedAt = parsed
	return run, nil
}
