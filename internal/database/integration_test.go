package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openMigrated(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "swim.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	tables := []string{
		"tenants", "users", "bookings", "booking_participants", "service_types", "resources",
		"skill_categories", "skills", "skill_assessments", "invoices", "goals", "badges",
		"student_badges", "attendance_streaks", "progress_media", "messages", "audit_logs",
	}

	for _, table := range tables {
		var name string
		err := db.Get(ctx, &name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	version, err := db.Version()
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("Version() = %d, want %d", version, SchemaVersion)
	}

	// A second run is a no-op.
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()
	now := time.Now()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	id, err := tx.ExecReturningID(ctx, "INSERT INTO tenants (name, created_at, updated_at) VALUES (?, ?, ?)", "Blue Lagoon", now, now)
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero id")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.Get(ctx, &count, "SELECT COUNT(*) FROM tenants WHERE name = ?", "Blue Lagoon"); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 tenant, got %d", count)
	}

	tx2, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}

	if _, err := tx2.Exec(ctx, "INSERT INTO tenants (name, created_at, updated_at) VALUES (?, ?, ?)", "Rolled Back", now, now); err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}

	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	if err := db.Get(ctx, &count, "SELECT COUNT(*) FROM tenants WHERE name = ?", "Rolled Back"); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 tenants after rollback, got %d", count)
	}
}

// TestNamedInsert checks :name binding through the dialect wrapper
func TestNamedInsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	row := struct {
		Name      string    `db:"name"`
		Timezone  string    `db:"timezone"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}{Name: "Dolphins", Timezone: "Europe/London", CreatedAt: time.Now(), UpdatedAt: time.Now()}

	id, err := db.NamedInsert(ctx, "INSERT INTO tenants (name, timezone, created_at, updated_at) VALUES (:name, :timezone, :created_at, :updated_at)", row)
	if err != nil {
		t.Fatalf("NamedInsert() error = %v", err)
	}

	var timezone string
	if err := db.Get(ctx, &timezone, "SELECT timezone FROM tenants WHERE id = ?", id); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if timezone != "Europe/London" {
		t.Errorf("timezone = %q, want Europe/London", timezone)
	}
}
