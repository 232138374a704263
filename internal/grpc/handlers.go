package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	q "github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyRecommendationTally CacheKeyType = "grpc:recommendation_tally"
)

type GRPCHandlers struct {
	recommender RecommenderService
	cache       Cacher
	logger      *zap.Logger
	sfGroup     singleflight.Group
	cacheTTL    time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil.
func NewGRPCHandlers(recommender RecommenderService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if recommender == nil {
		panic("nil RecommenderService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		recommender: recommender,
		cache:       cache,
		logger:      logger.Named("grpc-handler"),
		cacheTTL:    ttl,
	}
}

func (s *GRPCHandlers) parseAndValidatePeriod(req *structpb.Struct) (start, end time.Time, err error) {
	if start, err = timeField(req, "start_date"); err != nil {
		return
	}
	if end, err = timeField(req, "end_date"); err != nil {
		return
	}

	if end.Before(start) {
		err = status.Error(codes.InvalidArgument, "end date must be after start date")
		return
	}

	return
}

func normalizeKey(prefix CacheKeyType, start, end time.Time) string {
	s := start.UTC().Format(time.RFC3339Nano)
	e := end.UTC().Format(time.RFC3339Nano)
	return fmt.Sprintf("%s:%s:%s", prefix, s, e)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, q.ErrInvalidTransition):
		s.logger.Info("invalid answer", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		s.logger.Info("session not found", zap.String("op", op))
		return status.Error(codes.NotFound, "session not found")
	case errors.Is(err, service.ErrNoOutcomes):
		s.logger.Info("no outcomes found", zap.String("op", op))
		return status.Error(codes.NotFound, "no outcomes found for the given period")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "storage error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) respond(op string, v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		s.logger.Error("response encoding failed", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
	return out, nil
}

func (s *GRPCHandlers) StartSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := s.recommender.Start(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "StartSession", err)
	}
	return s.respond("StartSession", view)
}

func (s *GRPCHandlers) GetSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "session_id")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := s.recommender.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "GetSession", err)
	}
	return s.respond("GetSession", view)
}

func (s *GRPCHandlers) Answer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "session_id")
	if err != nil {
		return nil, err
	}
	node, err := stringField(req, "node")
	if err != nil {
		return nil, err
	}
	choice, err := stringField(req, "choice")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := s.recommender.Answer(ctx, id, q.NodeID(node), choice)
	if err != nil {
		return nil, s.handleError(ctx, "Answer", err)
	}
	return s.respond("Answer", view)
}

func (s *GRPCHandlers) Restart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "session_id")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	view, err := s.recommender.Restart(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, "Restart", err)
	}
	return s.respond("Restart", view)
}

func (s *GRPCHandlers) EndSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "session_id")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	if err := s.recommender.Discard(ctx, id); err != nil {
		return nil, s.handleError(ctx, "EndSession", err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCHandlers) GetCatalog(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return s.respond("GetCatalog", s.recommender.Catalog())
}

func (s *GRPCHandlers) GetRecommendationTally(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end, err := s.parseAndValidatePeriod(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyRecommendationTally, start, end)

	tally, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.Tally, error) {
		return s.recommender.RecommendationTally(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetRecommendationTally", err)
	}

	return s.respond("GetRecommendationTally", tally)
}
