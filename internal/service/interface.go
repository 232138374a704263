package service

import (
	"context"
	"time"

	"github.com/godilite/support-recommender/internal/repository/models"
	"github.com/godilite/support-recommender/internal/session"
)

// SessionStore holds in-progress sessions keyed by id.
type SessionStore interface {
	Load(ctx context.Context, id string) (session.State, error)
	Save(ctx context.Context, id string, st session.State) error
	Delete(ctx context.Context, id string) error
}

// OutcomeRepository defines the database operations for the outcome log.
type OutcomeRepository interface {
	RecordOutcome(ctx context.Context, rows []models.OutcomeRow) error
	GetServiceTally(ctx context.Context, start, end time.Time) (models.TallyResult, error)
}
