package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/quality"
)

// CreateRun records the start of a validation run.
func (s *SQLiteStore) CreateRun(ctx context.Context, source, file string, strict bool) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Source:    source,
		File:      file,
		Strict:    strict,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("source", source))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, file, strict, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.File, run.Strict, string(run.Status), formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// RecordFailure stores one failing field of a run.
func (s *SQLiteStore) RecordFailure(ctx context.Context, runID string, f quality.Failure) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var value *string
	if !f.Value.IsNull() {
		value = &f.Value.String
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_failures (run_id, row_number, column_name, column_idx, value, rule, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, f.Row, f.Column, f.Index, value, f.Rule, f.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

// CompleteRun stores the outcome of a run. A nil report with a nil error
// marks the run cancelled.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, report *quality.Report, runErr error) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	status := RunStatusPassed
	var rows, skipped, failures int
	if report != nil {
		rows, skipped, failures = report.Rows, report.Skipped, report.Failures
		if failures > 0 {
			status = RunStatusFailed
		}
	}

	var errMsg *string
	switch {
	case errors.Is(runErr, context.Canceled):
		status = RunStatusCancelled
	case runErr != nil:
		status = RunStatusErrored
		msg := runErr.Error()
		errMsg = &msg
	case report == nil:
		status = RunStatusCancelled
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, completed_at = ?, rows_scanned = ?, rows_skipped = ?, failures = ?, error = ?
		WHERE id = ?`,
		string(status), formatTime(time.Now()), rows, skipped, failures, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

const runColumns = `id, source, file, strict, status, started_at, completed_at, rows_scanned, rows_skipped, failures, error`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var status, started string
	var completed, errMsg sql.NullString

	err := row.Scan(&run.ID, &run.Source, &run.File, &run.Strict, &status, &started,
		&completed, &run.Rows, &run.Skipped, &run.Failures, &errMsg)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, fmt.Errorf("bad started_at for run %s: %w", run.ID, err)
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, fmt.Errorf("bad completed_at for run %s: %w", run.ID, err)
		}
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", notFound(err, "run "+id))
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// RunFailures returns the recorded failures of a run in row order.
func (s *SQLiteStore) RunFailures(ctx context.Context, id string, limit int) ([]FailureRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, row_number, column_name, column_idx, value, rule, reason
		FROM run_failures
		WHERE run_id = ?
		ORDER BY row_number, column_idx
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []FailureRecord
	for rows.Next() {
		var f FailureRecord
		var value sql.NullString
		if err := rows.Scan(&f.RunID, &f.Row, &f.Column, &f.Index, &value, &f.Rule, &f.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		if value.Valid {
			f.Value = &value.String
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}
	return out, nil
}
