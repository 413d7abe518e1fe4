package database

import (
	"embed"
	"fmt"
	"log/slog"
	"path"

	"github.com/pressly/goose/v3"
)

// SchemaVersion is the only schema version defined. A change requires a new
// numbered migration in every dialect directory.
const SchemaVersion = 1

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded schema for the connection's dialect
func (db *DB) RunMigrations() error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect(db.Dialect.GooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	dir := path.Join("migrations", db.Dialect.MigrationsSubdir())
	if err := goose.Up(db.DB.DB, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Version reports the applied schema version
func (db *DB) Version() (int64, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(db.Dialect.GooseDialect()); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersion(db.DB.DB)
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "migrations")
}

func (gooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "component", "migrations")
}
