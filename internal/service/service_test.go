package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"swimschool/internal/database"
	"swimschool/internal/repository"
	"swimschool/internal/seed"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func openDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())
	return db
}

// seededDB returns a migrated database holding the demo tenant
func seededDB(t *testing.T) (*database.DB, *seed.Result) {
	t.Helper()
	db := openDB(t)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	result, err := seed.Run(ctx, repository.New(tx), seed.Options{Now: testNow, CoachPassword: "demo1234"})
	if err != nil {
		tx.Rollback()
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
	return db, result
}
