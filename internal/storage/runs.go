package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/ifrec/internal/model"
	"github.com/google/uuid"
)

// SaveRun records a run with its raw and table results in one transaction.
// A run without an ID is assigned a new UUID.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run, results []model.ValidationResult, tables []model.TableResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO validation_runs (id, kind, started_at, finished_at, passed, fixed, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Passed, run.Fixed, run.Failed)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if err := saveResultsTx(ctx, tx, run.ID, results); err != nil {
		return err
	}
	if err := saveTableResultsTx(ctx, tx, run.ID, tables); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func saveResultsTx(ctx context.Context, tx *sql.Tx, runID string, results []model.ValidationResult) error {
	if len(results) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO validation_results (
			run_id, timestamp, file_path, dataset_name, validation_name,
			status, strategy, details, affected_lines, fixes_applied
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range results {
		_, err := stmt.ExecContext(ctx,
			runID, r.Timestamp.UTC(), r.FilePath, r.DatasetName, r.ValidationName,
			r.Status, r.Strategy, r.Details, model.JoinLines(r.AffectedLines), r.FixesApplied)
		if err != nil {
			return fmt.Errorf("failed to save result %d: %w", i, err)
		}
	}
	return nil
}

func saveTableResultsTx(ctx context.Context, tx *sql.Tx, runID string, results []model.TableResult) error {
	if len(results) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO table_results (
			run_id, timestamp, dataset_name, validation_name,
			passed, error_count, details, affected_groups
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare table result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range results {
		groups := r.AffectedGroups
		if groups == nil {
			groups = []map[string]string{}
		}
		encoded, err := json.Marshal(groups)
		if err != nil {
			return fmt.Errorf("failed to encode affected groups: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			runID, r.Timestamp.UTC(), r.DatasetName, r.ValidationName,
			r.Passed, r.ErrorCount, r.Details, string(encoded))
		if err != nil {
			return fmt.Errorf("failed to save table result %d: %w", i, err)
		}
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, passed, fixed, failed
		FROM validation_runs
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.Passed, &run.Fixed, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a single run.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var run model.Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, started_at, finished_at, passed, fixed, failed
		FROM validation_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.Passed, &run.Fixed, &run.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// GetRunResults returns the raw validation records of a run in insertion order.
func (s *SQLiteStorage) GetRunResults(ctx context.Context, runID string) ([]model.ValidationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, file_path, dataset_name, validation_name,
			status, strategy, details, affected_lines, fixes_applied
		FROM validation_results
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.ValidationResult
	for rows.Next() {
		var r model.ValidationResult
		var lines string
		if err := rows.Scan(&r.Timestamp, &r.FilePath, &r.DatasetName, &r.ValidationName,
			&r.Status, &r.Strategy, &r.Details, &lines, &r.FixesApplied); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if r.AffectedLines, err = model.SplitLines(lines); err != nil {
			return nil, fmt.Errorf("corrupt affected lines %q: %w", lines, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GetTableResults returns the table validation records of a run.
func (s *SQLiteStorage) GetTableResults(ctx context.Context, runID string) ([]model.TableResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, dataset_name, validation_name, passed, error_count, details, affected_groups
		FROM table_results
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query table results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.TableResult
	for rows.Next() {
		var r model.TableResult
		var groups string
		if err := rows.Scan(&r.Timestamp, &r.DatasetName, &r.ValidationName,
			&r.Passed, &r.ErrorCount, &r.Details, &groups); err != nil {
			return nil, fmt.Errorf("failed to scan table result: %w", err)
		}
		if err := json.Unmarshal([]byte(groups), &r.AffectedGroups); err != nil {
			return nil, fmt.Errorf("corrupt affected groups: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
