package grpc

import (
	"context"
	"time"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type RecommenderService interface {
	Start(ctx context.Context) (service.SessionView, error)
	Get(ctx context.Context, id string) (service.SessionView, error)
	Answer(ctx context.Context, id string, node q.NodeID, choice string) (service.SessionView, error)
	Restart(ctx context.Context, id string) (service.SessionView, error)
	Discard(ctx context.Context, id string) error
	Catalog() service.Catalog
	RecommendationTally(ctx context.Context, start, end time.Time) (service.Tally, error)
}
