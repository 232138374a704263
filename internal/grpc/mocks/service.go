package mocks

import (
	"context"
	"errors"
	"time"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/service"
)

// MockRecommenderService is a mock implementation of the RecommenderService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockRecommenderService struct {
	StartFunc               func(ctx context.Context) (service.SessionView, error)
	GetFunc                 func(ctx context.Context, id string) (service.SessionView, error)
	AnswerFunc              func(ctx context.Context, id string, node q.NodeID, choice string) (service.SessionView, error)
	RestartFunc             func(ctx context.Context, id string) (service.SessionView, error)
	DiscardFunc             func(ctx context.Context, id string) error
	CatalogFunc             func() service.Catalog
	RecommendationTallyFunc func(ctx context.Context, start, end time.Time) (service.Tally, error)
}

// Start implements the RecommenderService interface
func (m *MockRecommenderService) Start(ctx context.Context) (service.SessionView, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return service.SessionView{}, errors.New("StartFunc not implemented")
}

// Get implements the RecommenderService interface
func (m *MockRecommenderService) Get(ctx context.Context, id string) (service.SessionView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return service.SessionView{}, errors.New("GetFunc not implemented")
}

// Answer implements the RecommenderService interface
func (m *MockRecommenderService) Answer(ctx context.Context, id string, node q.NodeID, choice string) (service.SessionView, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, id, node, choice)
	}
	return service.SessionView{}, errors.New("AnswerFunc not implemented")
}

// Restart implements the RecommenderService interface
func (m *MockRecommenderService) Restart(ctx context.Context, id string) (service.SessionView, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, id)
	}
	return service.SessionView{}, errors.New("RestartFunc not implemented")
}

// Discard implements the RecommenderService interface
func (m *MockRecommenderService) Discard(ctx context.Context, id string) error {
	if m.DiscardFunc != nil {
		return m.DiscardFunc(ctx, id)
	}
	return errors.New("DiscardFunc not implemented")
}

// Catalog implements the RecommenderService interface
func (m *MockRecommenderService) Catalog() service.Catalog {
	if m.CatalogFunc != nil {
		return m.CatalogFunc()
	}
	return service.Catalog{}
}

// RecommendationTally implements the RecommenderService interface
func (m *MockRecommenderService) RecommendationTally(ctx context.Context, start, end time.Time) (service.Tally, error) {
	if m.RecommendationTallyFunc != nil {
		return m.RecommendationTallyFunc(ctx, start, end)
	}
	return service.Tally{}, errors.New("RecommendationTallyFunc not implemented")
}
