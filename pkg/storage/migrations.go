package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: event log and monthly budget accrual
	`CREATE TABLE IF NOT EXISTS usage_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp      TEXT    NOT NULL,
		actor          TEXT    NOT NULL,
		resource_class TEXT    NOT NULL,
		in_quantity    INTEGER NOT NULL DEFAULT 0 CHECK(in_quantity >= 0),
		out_quantity   INTEGER NOT NULL DEFAULT 0 CHECK(out_quantity >= 0),
		total_quantity INTEGER NOT NULL DEFAULT 0,
		cost           REAL    NOT NULL DEFAULT 0.0 CHECK(cost >= 0),
		session_id     TEXT,
		notes          TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_usage_events_timestamp ON usage_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_usage_events_actor ON usage_events(actor);
	CREATE INDEX IF NOT EXISTS idx_usage_events_resource_class ON usage_events(resource_class);

	CREATE TABLE IF NOT EXISTS budgets (
		period     TEXT PRIMARY KEY,
		allowance  REAL NOT NULL,
		accrued    REAL NOT NULL DEFAULT 0.0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,

	// Migration 2: session correlation lookups
	`CREATE INDEX IF NOT EXISTS idx_usage_events_session ON usage_events(session_id);`,
}

// runMigrations applies pending schema migrations. It never drops data.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		// Another process may have applied this version since we read it.
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
