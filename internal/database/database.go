package database

import (
	"context"
	"fmt"

	"github.com/alexivanou/wetter-proxy/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the gazetteer database selected by configuration
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName := "pgx"
	if cfg.IsMemory() {
		driverName = "sqlite3"
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsMemory() {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}
