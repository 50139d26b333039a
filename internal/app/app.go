// Package app wires the read-path components together: cache backend,
// connection manager, identity resolver, content aggregator and writer,
// blob cache and the invalidation coordinator.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/picshare/readpath/internal/blob"
	"github.com/picshare/readpath/internal/cache"
	"github.com/picshare/readpath/internal/config"
	"github.com/picshare/readpath/internal/content"
	"github.com/picshare/readpath/internal/identity"
	"github.com/picshare/readpath/internal/invalidation"
	"github.com/picshare/readpath/internal/logging"
	"github.com/picshare/readpath/internal/store"
)

// App owns the assembled component graph and the resources behind it.
type App struct {
	Config      *config.Config
	Logger      logging.Logger
	Manager     store.Manager
	Cache       cache.Store
	Resolver    *identity.Resolver
	Aggregator  *content.Aggregator
	Writer      *content.Writer
	Blobs       *blob.Cache
	Coordinator *invalidation.Coordinator

	memory *cache.Memory
	redis  *redis.Client
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := store.NewPostgresManager(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Manager: manager,
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		a.Cache = cache.NewRedis(a.redis, logger)
	} else {
		a.memory = cache.NewMemory()
		a.Cache = a.memory
	}

	var source blob.Source
	switch cfg.ImageSource {
	case config.ImageSourceS3:
		source, err = blob.NewS3Source(ctx, cfg)
		if err != nil {
			manager.Close()
			return nil, fmt.Errorf("blob source init error: %w", err)
		}
	default:
		source = blob.NewStoreSource(manager)
	}

	a.Coordinator = invalidation.NewCoordinator(a.Cache, logger)
	a.Resolver = identity.NewResolver(manager, a.Cache, identity.NewSHA512Verifier(), cfg, logger)
	a.Aggregator = content.NewAggregator(manager, a.Cache, cfg, logger)
	a.Writer = content.NewWriter(manager, a.Coordinator, cfg, logger)
	a.Blobs = blob.NewCache(a.Cache, source, cfg, logger)

	return a, nil
}

// Close releases the cache backend and the store pool.
func (a *App) Close() error {
	if a.memory != nil {
		a.memory.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			return err
		}
	}
	return a.Manager.Close()
}
