package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/todo-api/internal/database"
)

// NewTestDB creates an in-memory SQLite database with the schema applied.
// It automatically closes the database when the test completes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrating test db: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	return db
}
