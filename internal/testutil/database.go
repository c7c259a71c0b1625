// Package testutil provides shared helpers for tests: throwaway audit
// databases and raw-data fixture trees.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/ifrec/internal/storage"
)

// SetupTestDB creates a new in-memory audit database with migrations applied.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return store
}
