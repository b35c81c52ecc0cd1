package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
)

// SaveAnalysis stores an analysis result for a user and returns its ID.
func (db *DB) SaveAnalysis(ctx context.Context, userID string, result *models.AnalysisResult, at time.Time) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO analyses (
			id, user_id, risk_level, risk_label, score, probability, method, result_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	risk := result.CurrentRisk
	_, err = db.ExecContext(ctx, query,
		id,
		userID,
		int(risk.RiskLevel),
		risk.RiskLabel,
		risk.Score,
		risk.Probability,
		risk.Method,
		string(payload),
		formatTime(at),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert analysis: %w", err)
	}
	return id, nil
}

// GetLatestAnalysis returns the newest stored analysis for a user, or nil if
// there is none.
func (db *DB) GetLatestAnalysis(ctx context.Context, userID string) (*models.StoredAnalysis, error) {
	history, err := db.GetAnalysisHistory(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}

// GetAnalysisHistory returns up to limit analyses for a user, newest first.
func (db *DB) GetAnalysisHistory(ctx context.Context, userID string, limit int) ([]models.StoredAnalysis, error) {
	query := `
		SELECT id, user_id, result_json, created_at
		FROM analyses
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.StoredAnalysis
	for rows.Next() {
		var (
			a         models.StoredAnalysis
			payload   string
			createdAt sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &a.Result); err != nil {
			return nil, fmt.Errorf("failed to decode analysis %s: %w", a.ID, err)
		}
		if createdAt.Valid {
			if t, err := parseTime(createdAt.String); err == nil {
				a.CreatedAt = t
			}
		}
		out = append(out, a)
	}

	return out, rows.Err()
}
