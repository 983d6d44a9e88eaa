package job

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Compile-time check that SQLiteRepository implements Repository.
var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository stores jobs in a SQLite database so that job history
// survives restarts of the API server.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the job database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// writes are serialized by sqlite anyway
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteRepository{db: db, path: path}, nil
}

// Path returns the database file path.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Close closes the underlying database connection.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Save inserts or replaces job.
func (r *SQLiteRepository) Save(ctx context.Context, job *Job) error {
	j := job.Clone()

	var report sql.NullString
	if j.Report != nil {
		data, err := json.Marshal(j.Report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		report = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cut_jobs (
            id, unit, publish, status, error, report_json,
            created_at, updated_at, started_at, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            unit = excluded.unit,
            publish = excluded.publish,
            status = excluded.status,
            error = excluded.error,
            report_json = excluded.report_json,
            updated_at = excluded.updated_at,
            started_at = excluded.started_at,
            completed_at = excluded.completed_at`,
		j.ID,
		j.Unit,
		j.Publish,
		string(j.Status),
		j.Error,
		report,
		formatTime(j.CreatedAt),
		formatTime(j.UpdatedAt),
		formatTime(j.StartedAt),
		formatTime(j.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	return nil
}

const selectJob = `SELECT id, unit, publish, status, error, report_json,
    created_at, updated_at, started_at, completed_at FROM cut_jobs`

// FindByID retrieves a job by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, selectJob+" WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", id, err)
	}
	return job, nil
}

// List returns all jobs, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, selectJob+" ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a job.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cut_jobs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		j                                  Job
		status                             string
		report                             sql.NullString
		created, updated, started, stopped string
	)
	if err := row.Scan(&j.ID, &j.Unit, &j.Publish, &status, &j.Error, &report,
		&created, &updated, &started, &stopped); err != nil {
		return nil, err
	}
	j.Status = Status(status)

	if report.Valid && report.String != "" {
		var r Report
		if err := json.Unmarshal([]byte(report.String), &r); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		j.Report = &r
	}

	var err error
	if j.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if j.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if j.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if j.CompletedAt, err = parseTime(stopped); err != nil {
		return nil, err
	}
	return &j, nil
}

// timeLayout has a fixed-width fraction so stored values sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
