package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/vaughan-dsouza/cloudportal/internal/config"
)

//go:embed migrations/mysql/*.sql migrations/postgres/*.sql
var migrations embed.FS

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dir, dialect, err := migrationSource(driver)
	if err != nil {
		return err
	}

	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("db: migrations: %w", err)
	}

	goose.SetBaseFS(sub)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("db: migrations: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("db: migrations: %w", err)
	}
	return nil
}

func migrationSource(driver string) (dir, dialect string, err error) {
	switch driver {
	case config.DriverMySQL:
		return "migrations/mysql", "mysql", nil
	case config.DriverPgx:
		return "migrations/postgres", "postgres", nil
	}
	return "", "", fmt.Errorf("db: no migrations for driver %q", driver)
}
