package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name:     "postgres",
	numbered: true,
	schema: `
	CREATE TABLE IF NOT EXISTS alerts (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		alert_price DOUBLE PRECISION NOT NULL,
		direction TEXT NOT NULL,
		label TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at BIGINT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, seq);
	CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(user_id, is_active);
	`,
}

// NewPostgresStore creates a new PostgreSQL-based alert store.
func NewPostgresStore(ctx context.Context, dsn, userID string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newSQLStore(db, postgresDialect, userID)
}

// Open creates the store selected by driver.
func Open(ctx context.Context, driver, path, dsn, userID string) (*SQLStore, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteStore(path, userID)
	case "postgres":
		return NewPostgresStore(ctx, dsn, userID)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
}
