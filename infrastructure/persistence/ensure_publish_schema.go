package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsurePublishSchema creates the publish store tables when they are missing.
// Safe to call at startup.
func EnsurePublishSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddls := []string{
		`CREATE TABLE IF NOT EXISTS publish_queue (
			url TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			file TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'pending',
			queued_at TEXT NOT NULL DEFAULT '',
			position INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS publish_status_records (
			url TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			file TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS publish_status_platforms (
			url TEXT NOT NULL,
			platform TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			attempts INT NOT NULL DEFAULT 0,
			last_attempt_at TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (url, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS publish_status_meta (
			id INT PRIMARY KEY,
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, ddl := range ddls {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensuring publish schema failed: %w", err)
		}
	}
	return nil
}
