package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/support-recommender/internal/repository/models"
	"github.com/godilite/support-recommender/internal/session"
)

// MockOutcomeRepository is a mock implementation of the OutcomeRepository interface
// for testing the service layer.
type MockOutcomeRepository struct {
	RecordOutcomeFunc   func(ctx context.Context, rows []models.OutcomeRow) error
	GetServiceTallyFunc func(ctx context.Context, start, end time.Time) (models.TallyResult, error)
}

// RecordOutcome implements the OutcomeRepository interface
func (m *MockOutcomeRepository) RecordOutcome(ctx context.Context, rows []models.OutcomeRow) error {
	if m.RecordOutcomeFunc != nil {
		return m.RecordOutcomeFunc(ctx, rows)
	}
	return nil
}

// GetServiceTally implements the OutcomeRepository interface
func (m *MockOutcomeRepository) GetServiceTally(ctx context.Context, start, end time.Time) (models.TallyResult, error) {
	if m.GetServiceTallyFunc != nil {
		return m.GetServiceTallyFunc(ctx, start, end)
	}
	return models.TallyResult{}, errors.New("GetServiceTallyFunc not implemented")
}

// MockSessionStore is a mock implementation of the SessionStore interface.
type MockSessionStore struct {
	LoadFunc   func(ctx context.Context, id string) (session.State, error)
	SaveFunc   func(ctx context.Context, id string, st session.State) error
	DeleteFunc func(ctx context.Context, id string) error
}

// Load implements the SessionStore interface
func (m *MockSessionStore) Load(ctx context.Context, id string) (session.State, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, id)
	}
	return session.State{}, errors.New("LoadFunc not implemented")
}

// Save implements the SessionStore interface
func (m *MockSessionStore) Save(ctx context.Context, id string, st session.State) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, id, st)
	}
	return errors.New("SaveFunc not implemented")
}

// Delete implements the SessionStore interface
func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}
