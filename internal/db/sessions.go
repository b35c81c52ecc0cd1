package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

const insertSessionQuery = `
	INSERT INTO usage_sessions (user_id, app, started_at, duration_minutes)
	VALUES (?, ?, ?, ?)
`

// InsertSession stores a single usage session and sets its ID.
func (db *DB) InsertSession(ctx context.Context, s *models.UsageSession) error {
	if s.UserID == "" {
		return fmt.Errorf("failed to insert session: missing user id")
	}

	result, err := db.ExecContext(ctx, insertSessionQuery,
		s.UserID,
		s.App,
		formatTime(s.StartedAt),
		max(0, s.DurationMinutes),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		s.ID = id
	}
	return nil
}

// InsertSessions stores sessions in a single transaction.
func (db *DB) InsertSessions(ctx context.Context, sessions []models.UsageSession) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSessionQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, s := range sessions {
		if s.UserID == "" {
			return 0, fmt.Errorf("failed to insert session %d: missing user id", i)
		}
		if _, err := stmt.ExecContext(ctx, s.UserID, s.App, formatTime(s.StartedAt), max(0, s.DurationMinutes)); err != nil {
			return 0, fmt.Errorf("failed to insert session %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sessions: %w", err)
	}
	return len(sessions), nil
}

// GetSessions returns a user's sessions starting at or after since, oldest first.
func (db *DB) GetSessions(ctx context.Context, userID string, since time.Time) ([]models.UsageSession, error) {
	query := `
		SELECT id, user_id, app, started_at, duration_minutes
		FROM usage_sessions
		WHERE user_id = ? AND started_at >= ?
		ORDER BY started_at ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []models.UsageSession
	for rows.Next() {
		var s models.UsageSession
		var startedAt string
		if err := rows.Scan(&s.ID, &s.UserID, &s.App, &startedAt, &s.DurationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if s.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("failed to parse session time %q: %w", startedAt, err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// ListUsers returns every user with recorded sessions, sorted.
func (db *DB) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT user_id FROM usage_sessions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// PruneSessions deletes sessions that started before the cutoff.
func (db *DB) PruneSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM usage_sessions WHERE started_at < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}
