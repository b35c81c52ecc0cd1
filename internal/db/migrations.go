package db

import (
	"context"
	"fmt"
)

// migrate rewrites timestamps stored with Go's default time.Time formatting
// (e.g. "2024-03-01 10:00:00 +0000 UTC") into timeLayout, so that SQLite's
// date functions and string ordering work on them.
func (db *DB) migrate() error {
	queries := []string{
		`UPDATE usage_sessions
		 SET started_at = SUBSTR(started_at, 1, 19)
		 WHERE length(started_at) > 19 AND started_at LIKE '% UTC'`,

		`UPDATE analyses
		 SET created_at = SUBSTR(created_at, 1, 19)
		 WHERE length(created_at) > 19 AND created_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to normalize time formats: %w", err)
		}
	}

	return nil
}
