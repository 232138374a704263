package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/godilite/support-recommender/internal/config"
	handler "github.com/godilite/support-recommender/internal/grpc"
	"github.com/godilite/support-recommender/internal/httpapi"
	"github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/repository"
	"github.com/godilite/support-recommender/internal/service"
	"github.com/godilite/support-recommender/internal/sessionstore"
	"github.com/godilite/support-recommender/pkg/cache"
	dbbuilder "github.com/godilite/support-recommender/pkg/database"
	grpcsrv "github.com/godilite/support-recommender/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := questionnaire.Validate(); err != nil {
		return nil, fmt.Errorf("question graph invalid: %w", err)
	}

	if cfg.DBDriver == "sqlite3" && !strings.HasPrefix(cfg.DBPath, "file:") && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("database directory: %w", err)
		}
	}

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithMigrations(repository.Migrations()...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	a := &App{logger: logger, dbPool: dbPool}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
		cache.WithKeyPrefix("recommender:"),
	)
	switch {
	case err == nil:
		a.cache = cacheClient
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	case cfg.SessionStore == config.SessionStoreRedis:
		a.closeStores()
		return nil, fmt.Errorf("cache init failed: %w", err)
	default:
		logger.Warn("Cache unavailable, tally results will not be cached",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	var store service.SessionStore
	if cfg.SessionStore == config.SessionStoreRedis {
		store = sessionstore.NewRedis(a.cache, cfg.SessionTTL)
	} else {
		store = sessionstore.NewMemory(cfg.SessionTTL)
	}
	logger.Info("Session store selected", zap.String("store", cfg.SessionStore), zap.Duration("ttl", cfg.SessionTTL))

	outcomeRepo := repository.NewOutcomeRepository(dbPool)

	recommender := service.NewRecommenderService(store, outcomeRepo, logger)

	// A typed nil would defeat the nil check in FindAndCache.
	var tallyCache handler.Cacher
	if a.cache != nil {
		tallyCache = a.cache
	}
	grpcHandlers := handler.NewGRPCHandlers(recommender, tallyCache, logger, cfg.CacheTTL)

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
	)
	if err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	a.grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterRecommenderServer(s, grpcHandlers)
	})

	a.httpServer, err = httpapi.NewServer(
		httpapi.NewRouter(httpapi.NewHandlers(recommender, logger), logger),
		httpapi.WithPort(cfg.HTTPPort),
		httpapi.WithLogger(logger),
	)
	if err != nil {
		_ = a.grpcServer.Shutdown(ctx)
		a.closeStores()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return a, nil
}

// Run starts the application and blocks until ctx is done or a shutdown
// signal is received.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	a.httpServer.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.grpcServer.SetServiceHealth(handler.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}

	a.closeStores()

	select {
	case <-shutdownCtx.Done():
		a.logger.Warn("shutdown completed but deadline exceeded")
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}

// GRPCAddr and HTTPAddr report the bound listener addresses.
func (a *App) GRPCAddr() string { return a.grpcServer.Addr().String() }
func (a *App) HTTPAddr() string { return a.httpServer.Addr().String() }

func (a *App) closeStores() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
