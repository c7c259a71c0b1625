package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS validation_runs (
					id TEXT PRIMARY KEY,
					kind TEXT NOT NULL,
					started_at DATETIME NOT NULL,
					finished_at DATETIME NOT NULL,
					passed INTEGER NOT NULL DEFAULT 0,
					fixed INTEGER NOT NULL DEFAULT 0,
					failed INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_validation_runs_started ON validation_runs(started_at)`,

				`CREATE TABLE IF NOT EXISTS validation_results (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					file_path TEXT NOT NULL,
					dataset_name TEXT NOT NULL DEFAULT '',
					validation_name TEXT NOT NULL,
					status TEXT NOT NULL,
					strategy TEXT NOT NULL DEFAULT '',
					details TEXT NOT NULL DEFAULT '',
					affected_lines TEXT NOT NULL DEFAULT '',
					fixes_applied INTEGER NOT NULL DEFAULT 0,
					FOREIGN KEY (run_id) REFERENCES validation_runs(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_validation_results_run ON validation_results(run_id)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add status index for failure lookups",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX idx_validation_results_status ON validation_results(status)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add table validation results",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS table_results (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id TEXT NOT NULL,
					timestamp DATETIME NOT NULL,
					dataset_name TEXT NOT NULL,
					validation_name TEXT NOT NULL,
					passed BOOLEAN NOT NULL,
					error_count INTEGER NOT NULL DEFAULT 0,
					details TEXT NOT NULL DEFAULT '',
					affected_groups TEXT NOT NULL DEFAULT '[]',
					FOREIGN KEY (run_id) REFERENCES validation_runs(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_table_results_run ON table_results(run_id)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
