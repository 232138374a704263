package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/support-recommender/internal/repository/models"
)

// timeLayout is fixed width so text comparisons in SQL order chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Migrations creates the outcome log schema. Safe to run repeatedly.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS recommendation_outcomes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT    NOT NULL,
			rank       INTEGER NOT NULL,
			service    TEXT    NOT NULL,
			score      INTEGER NOT NULL,
			created_at TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_created_at ON recommendation_outcomes(created_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_outcomes_session_rank ON recommendation_outcomes(session_id, rank)`,
	}
}

// OutcomeRepository is an append-only log of finished recommendations. Rows
// are anonymous and are never read back into a session.
type OutcomeRepository struct {
	db *sql.DB
}

func NewOutcomeRepository(db *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// RecordOutcome stores all ranked rows of one session atomically. A session
// is logged once; rows for a rank it already has are ignored.
func (r *OutcomeRepository) RecordOutcome(ctx context.Context, rows []models.OutcomeRow) (err error) {
	if len(rows) == 0 {
		return errors.New("record outcome: no rows")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin RecordOutcome: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const stmt = `
		INSERT OR IGNORE INTO recommendation_outcomes (session_id, rank, service, score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, row := range rows {
		if _, err = tx.ExecContext(ctx, stmt, row.SessionID, row.Rank, row.Service, row.Score, formatTime(row.CreatedAt)); err != nil {
			return fmt.Errorf("insert RecordOutcome: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit RecordOutcome: %w", err)
	}
	return nil
}

// GetServiceTally aggregates how often each service was recommended, and
// ranked first, by sessions finished within [start, end].
func (r *OutcomeRepository) GetServiceTally(ctx context.Context, start, end time.Time) (models.TallyResult, error) {
	from, to := formatTime(start), formatTime(end)

	const countQuery = `
		SELECT COUNT(DISTINCT session_id)
		FROM recommendation_outcomes
		WHERE created_at >= ? AND created_at <= ?
	`
	var result models.TallyResult
	if err := r.db.QueryRowContext(ctx, countQuery, from, to).Scan(&result.Sessions); err != nil {
		return models.TallyResult{}, fmt.Errorf("query GetServiceTally sessions: %w", err)
	}
	if result.Sessions == 0 {
		return result, nil
	}

	const query = `
		SELECT
			service,
			COUNT(*) AS recommended,
			SUM(CASE WHEN rank = 1 THEN 1 ELSE 0 END) AS ranked_first,
			AVG(CAST(score AS REAL)) AS average_score
		FROM recommendation_outcomes
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY service
		ORDER BY recommended DESC, ranked_first DESC, service
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return models.TallyResult{}, fmt.Errorf("query GetServiceTally: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row models.ServiceTallyRow
		if err := rows.Scan(&row.Service, &row.Recommended, &row.RankedFirst, &row.AverageScore); err != nil {
			return models.TallyResult{}, fmt.Errorf("scan GetServiceTally row: %w", err)
		}
		result.Services = append(result.Services, row)
	}
	if err := rows.Err(); err != nil {
		return models.TallyResult{}, fmt.Errorf("iterate GetServiceTally: %w", err)
	}

	return result, nil
}
