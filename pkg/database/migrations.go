package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
)

// RunMigrations executes pending schema migrations from the given directory.
// Idempotent: only pending migrations run.
func RunMigrations(ctx context.Context, db *sql.DB, migrationsPath string, logger *logging.StructuredLogger) error {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}
	defer closeMigrator(ctx, m, logger)

	err = m.Up()
	if err == migrate.ErrNoChange {
		logger.Info(ctx, "[MIGRATE] No migrations to apply, database up to date", logging.Fields{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info(ctx, "[MIGRATE] Applied migrations", logging.Fields{"version": version})
	return nil
}

// RollbackMigrations reverts all applied migrations
func RollbackMigrations(ctx context.Context, db *sql.DB, migrationsPath string, logger *logging.StructuredLogger) error {
	m, err := newMigrator(db, migrationsPath)
	if err != nil {
		return err
	}
	defer closeMigrator(ctx, m, logger)

	err = m.Down()
	if err == migrate.ErrNoChange {
		logger.Info(ctx, "[MIGRATE] No migrations to roll back", logging.Fields{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	logger.Info(ctx, "[MIGRATE] Rolled back all migrations", logging.Fields{})
	return nil
}

func newMigrator(db *sql.DB, migrationsPath string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

func closeMigrator(ctx context.Context, m *migrate.Migrate, logger *logging.StructuredLogger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn(ctx, "[MIGRATE] Failed to close migration source", logging.Fields{"error": srcErr.Error()})
	}
	if dbErr != nil {
		logger.Warn(ctx, "[MIGRATE] Failed to close migration database", logging.Fields{"error": dbErr.Error()})
	}
}
