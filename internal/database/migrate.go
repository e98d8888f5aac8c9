package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrationsFS embed.FS

// NewMigrator builds a migrate instance bound to an open connection.
// Working on the live handle keeps shared in-memory SQLite databases intact.
func NewMigrator(db *sqlx.DB, dbType config.DBType) (*migrate.Migrate, error) {
	dir := "migrations/sqlite"
	dbName := "sqlite3"
	var (
		driver database.Driver
		err    error
	)
	if dbType == config.DBTypePostgreSQL {
		dir = "migrations/postgres"
		dbName = "postgres"
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	} else {
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s driver: %w", dbName, err)
	}

	source, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending gazetteer migrations
func Migrate(db *sqlx.DB, dbType config.DBType) error {
	m, err := NewMigrator(db, dbType)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}
