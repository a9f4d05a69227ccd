package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS alerts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		alert_price REAL NOT NULL,
		direction TEXT NOT NULL,
		label TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, seq);
	CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(user_id, is_active);
	`,
}

// NewSQLiteStore creates a new SQLite-based alert store.
func NewSQLiteStore(dbPath, userID string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=FULL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	return newSQLStore(db, sqliteDialect, userID)
}
