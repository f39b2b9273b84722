// Package testing provides testing utilities and helpers for the options tracker.
package testing

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/greenmangroup/options-tracker/internal/database"
)

// NewTestDB creates an in-memory SQLite database for testing with the full
// schema applied. Returns the database instance and a cleanup function that
// closes the connection. The cleanup function is idempotent.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	// Shared-cache named memory DSN so each test gets its own isolated
	// database that survives across the pool's single connection.
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := database.New(dsn)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		_ = db.Close()
	}
	return db, cleanup
}
