package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count == 1
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d, want contiguous versions", i, m.Version)
		}
		if m.UpSQL == "" {
			t.Errorf("migration %d_%s has empty up SQL", m.Version, m.Name)
		}
		if m.DownSQL == "" {
			t.Errorf("migration %d_%s has no down SQL", m.Version, m.Name)
		}
	}
}

func TestRunAll_CreatesSchemaAndIsIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("first RunAll: %v", err)
	}
	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("second RunAll: %v", err)
	}

	for _, table := range []string{"experiments", "experiment_sessions", "decoded_results"} {
		if !tableExists(t, db, table) {
			t.Errorf("expected table %s to exist", table)
		}
	}

	version, dirty, err := GetCurrentVersion(ctx, db)
	if err != nil {
		t.Fatalf("GetCurrentVersion: %v", err)
	}
	if dirty {
		t.Error("expected clean migration state")
	}
	all, _ := LoadMigrations()
	if version != all[len(all)-1].Version {
		t.Errorf("version = %d, want %d", version, all[len(all)-1].Version)
	}
}

func TestMigrateDownTo_Zero(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	all, err := LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	current, _, _ := GetCurrentVersion(ctx, db)

	if err := MigrateDownTo(ctx, db, zap.NewNop(), all, current, 0); err != nil {
		t.Fatalf("MigrateDownTo: %v", err)
	}
	if tableExists(t, db, "experiments") {
		t.Error("expected experiments table to be dropped")
	}
	version, _, _ := GetCurrentVersion(ctx, db)
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
}

func TestRunAll_RefusesDirtyState(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := EnsureMigrationsTable(ctx, db); err != nil {
		t.Fatalf("EnsureMigrationsTable: %v", err)
	}
	if err := SetVersion(ctx, db, 1, true); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}
	if err := RunAll(ctx, db); err == nil {
		t.Fatal("expected dirty state error")
	}
}
