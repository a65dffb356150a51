package test_utils

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/moveplan/moveplan/internal/database"
)

// SetupTestDB returns a private in-memory SQLite database with the kv_entry
// schema applied. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openMigrated(t, ":memory:")
}

// SetupFileDB opens a migrated SQLite file inside dir. Calling it twice with the
// same dir reopens the same data.
func SetupFileDB(t *testing.T, dir string) *sql.DB {
	t.Helper()
	return openMigrated(t, filepath.Join(dir, "moveplan.db"))
}

func openMigrated(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.MigrateSQLite(db); err != nil {
		t.Fatalf("migrate sqlite %s: %v", path, err)
	}
	return db
}

// projectRoot is the closest ancestor of the working directory holding go.mod.
func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the working directory")
		}
		dir = parent
	}
}
