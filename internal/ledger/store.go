package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. The ledger is a history
// cache, so a mismatch asks the user to delete it rather than migrating.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const timeLayout = time.RFC3339

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under stateDir.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	dbPath := filepath.Join(stateDir, "trawl.db")
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{db: db, path: dbPath}
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// BeginRun records the start of a pipeline run and returns it.
func (s *Store) BeginRun(ctx context.Context, fromDate, toDate string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		FromDate:  fromDate,
		ToDate:    toDate,
		Status:    StatusRunning,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, from_date, to_date, status) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.StartedAt.Format(timeLayout), run.FromDate, run.ToDate, run.Status)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed or failed with its final counters.
func (s *Store) FinishRun(ctx context.Context, runID, status, notePath string, keptItems int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ?, note_path = ?, kept_items = ? WHERE id = ?",
		time.Now().UTC().Format(timeLayout), status, notePath, keptItems, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: run %s not found", runID)
	}
	return nil
}

// RecordBatch appends one topic/source batch outcome to a run.
func (s *Store) RecordBatch(ctx context.Context, batch Batch) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO run_batches (run_id, topic_slug, source, found, kept, error) VALUES (?, ?, ?, ?, ?, ?)",
		batch.RunID, batch.TopicSlug, batch.Source, batch.Found, batch.Kept, batch.Error)
	if err != nil {
		return fmt.Errorf("record batch: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first, at most limit of them.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, from_date, to_date, status, note_path, kept_items FROM runs ORDER BY started_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &started, &finished, &run.FromDate, &run.ToDate,
			&run.Status, &run.NotePath, &run.KeptItems); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(timeLayout, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(timeLayout, finished)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// BatchesForRun returns a run's batch records in insertion order.
func (s *Store) BatchesForRun(ctx context.Context, runID string) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, topic_slug, source, found, kept, error FROM run_batches WHERE run_id = ? ORDER BY id",
		runID)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var batch Batch
		if err := rows.Scan(&batch.RunID, &batch.TopicSlug, &batch.Source,
			&batch.Found, &batch.Kept, &batch.Error); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}
