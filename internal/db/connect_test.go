package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mind-engage/mindengage-autograde/internal/db"
)

func TestOpenSQLiteEnsuresSchema(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"

	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, table := range []string{"questions", "gradings", "users", "event_log"} {
		var name string
		err := dbh.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name=$1`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
	dbh.Close()

	// schema creation is idempotent
	dbh, err = db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	dbh.Close()
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := db.Open(context.Background(), db.Driver("oracle"), ""); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
