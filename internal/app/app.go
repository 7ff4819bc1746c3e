package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/cache"
	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
)

// App holds the storage backends selected by store.driver
type App struct {
	Users     repository.UserRepo
	Sessions  cache.SessionStore
	Dashboard cache.DashboardCache

	mongo *mongo.Client
	redis *redis.Client
}

// Open connects the configured backends
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg.Store.Driver == config.DriverMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return &App{
			Users:     repository.NewMemoryUserRepo(),
			Sessions:  cache.NewMemorySessionStore(),
			Dashboard: cache.NewMemoryDashboardCache(cfg.Cache.DashboardTTL),
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	rdb := redis.NewClient(&redis.Options{
		Addr:     strings.TrimPrefix(cfg.Redis.Addr, "redis://"),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(connectCtx).Err(); err != nil {
		mongoClient.Disconnect(context.Background())
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	db := mongoClient.Database(cfg.Mongo.Database)
	return &App{
		Users:     repository.NewUserRepo(db, logger),
		Sessions:  cache.NewSessionStore(rdb, cfg.Cache.SessionTTL),
		Dashboard: cache.NewDashboardCache(rdb, cfg.Cache.DashboardTTL),
		mongo:     mongoClient,
		redis:     rdb,
	}, nil
}

// Close releases the backend connections
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
