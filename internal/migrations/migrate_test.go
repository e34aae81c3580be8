package migrations

import (
	"path/filepath"
	"testing"

	"github.com/Simplici0/fleetprice/internal/db"
)

func TestUpCreatesStateTableAndIsRepeatable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database, DialectSQLite); err != nil {
			t.Fatalf("Up (run %d): %v", i, err)
		}
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM app_state`).Scan(&count); err != nil {
		t.Fatalf("query app_state: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty app_state, got %d rows", count)
	}
}
