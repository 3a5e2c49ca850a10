package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"trip-data-pipeline/internal/config"
	"trip-data-pipeline/internal/model"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("not found")

// Store holds the runs and trips tables
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and creates the runs table if needed
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	if cfg.Driver != DriverSQLite && cfg.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, driver: cfg.Driver}
	if _, err := s.db.ExecContext(ctx, s.runsTable()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}
	return s, nil
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) runsTable() string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT,
		status TEXT,
		rows_cleaned INTEGER,
		rows_excluded INTEGER,
		message TEXT,
		stages TEXT,
		created_at %[1]s,
		updated_at %[1]s
	);`, s.timeType())
}

func (s *Store) timeType() string {
	if s.driver == DriverPostgres {
		return "TIMESTAMPTZ"
	}
	return "DATETIME"
}

func (s *Store) floatType() string {
	if s.driver == DriverPostgres {
		return "DOUBLE PRECISION"
	}
	return "REAL"
}

// rebind rewrites ? placeholders to $n for postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ------------------- Runs -------------------

// SaveRun stores a new run
func (s *Store) SaveRun(ctx context.Context, run model.Run) error {
	now := time.Now().UTC()
	if run.Status == "" {
		run.Status = model.StatusPending
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO runs (id, source, status, rows_cleaned, rows_excluded, message, stages, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.Source, run.Status, run.RowsCleaned, run.RowsExcluded, run.Message, "[]", now, now)
	return err
}

// FinishRun records the outcome and stage summaries of a run
func (s *Store) FinishRun(ctx context.Context, result model.CleanResult) error {
	stages, err := json.Marshal(result.Stages)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE runs SET status = ?, rows_cleaned = ?, rows_excluded = ?, message = ?, stages = ?, updated_at = ? WHERE id = ?`),
		result.Status, result.RowsCleaned, result.RowsExcluded, result.Message, string(stages), now, result.RunID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns(ctx context.Context) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, status, rows_cleaned, rows_excluded, message, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Source, &run.Status, &run.RowsCleaned, &run.RowsExcluded, &run.Message, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run with its stage summaries
func (s *Store) GetRun(ctx context.Context, runID string) (model.Run, []model.StageSummary, error) {
	var run model.Run
	var stagesJSON string

	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, source, status, rows_cleaned, rows_excluded, message, stages, created_at, updated_at FROM runs WHERE id = ?`), runID).
		Scan(&run.ID, &run.Source, &run.Status, &run.RowsCleaned, &run.RowsExcluded, &run.Message, &stagesJSON, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return run, nil, ErrNotFound
	}
	if err != nil {
		return run, nil, err
	}

	var stages []model.StageSummary
	if err := json.Unmarshal([]byte(stagesJSON), &stages); err != nil {
		return run, nil, fmt.Errorf("failed to decode stages: %w", err)
	}
	return run, stages, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
