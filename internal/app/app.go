// Package app builds the service graph from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rewards-optimizer-go/internal/cache"
	"rewards-optimizer-go/internal/catalog"
	"rewards-optimizer-go/internal/config"
	"rewards-optimizer-go/internal/database"
	"rewards-optimizer-go/internal/events"
	"rewards-optimizer-go/internal/logging"
	"rewards-optimizer-go/internal/service"
	"rewards-optimizer-go/internal/storage"
)

type App struct {
	Config  *config.Config
	Store   storage.Store
	Service *service.RewardsService
	Logger  *zap.Logger

	cleanup []func() error
}

// Build wires storage, cache and events for cfg. Redis and AMQP are
// optional: when unreachable the app runs with an in-process cache and no
// events. Postgres falls back to memory only when STORAGE_FALLBACK is set.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	store, err := a.buildStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	a.Service = service.New(store, service.Options{
		Cache:                       a.buildCache(cfg),
		Publisher:                   a.buildPublisher(cfg),
		Logger:                      logger.Named(logging.ComponentService),
		CompanyPointsPerTransaction: cfg.CompanyPointsPerTransaction,
		DefaultPurchaseAmount:       cfg.DefaultPurchaseAmount,
	})

	if cfg.SeedCatalog {
		if _, err := a.SeedCatalog(ctx, cfg.CatalogFile); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) buildStore(cfg *config.Config) (storage.Store, error) {
	log := a.Logger.Named(logging.ComponentStorage)

	switch cfg.StorageBackend {
	case "memory":
		log.Info("initialized memory backend")
		return storage.NewMemoryStore(), nil
	case "postgres":
		db, err := database.Connect(cfg, log)
		if err != nil {
			if !cfg.StorageFallback {
				return nil, err
			}
			log.Warn("postgres unavailable, continuing with memory backend", zap.Error(err))
			return storage.NewMemoryStore(), nil
		}
		a.cleanup = append(a.cleanup, func() error { return database.Close(db) })

		primary := storage.NewGormStore(db)
		if !cfg.StorageFallback {
			return primary, nil
		}
		return storage.NewFallbackStore(primary, storage.NewMemoryStore(), storage.BackendFailure, log), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

func (a *App) buildCache(cfg *config.Config) cache.RecommendationCache {
	log := a.Logger.Named(logging.ComponentCache)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL(),
		}, log)
		if err == nil {
			a.cleanup = append(a.cleanup, rc.Close)
			return rc
		}
		log.Warn("redis unavailable, using in-process cache", zap.Error(err))
	}
	return cache.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL())
}

func (a *App) buildPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	log := a.Logger.Named(logging.ComponentEvents)
	pub, err := events.NewAMQPPublisher(events.AMQPConfig{
		URL:        cfg.AMQPURL,
		Exchange:   cfg.AMQPExchange,
		RoutingKey: cfg.AMQPRoutingKey,
	}, log)
	if err != nil {
		log.Warn("failed to initialize AMQP publisher, continuing without events", zap.Error(err))
		return events.Nop{}
	}
	log.Info("initialized AMQP publisher",
		zap.String("exchange", cfg.AMQPExchange),
		zap.String("routing_key", cfg.AMQPRoutingKey))
	a.cleanup = append(a.cleanup, pub.Close)
	return pub
}

// SeedCatalog loads the catalog at path (embedded default when empty) into the store.
func (a *App) SeedCatalog(ctx context.Context, path string) (catalog.SeedResult, error) {
	c, err := catalog.Load(path)
	if err != nil {
		return catalog.SeedResult{}, err
	}
	res, err := catalog.Seed(ctx, a.Store, c, a.Config.CompanyPointsPerTransaction)
	if err != nil {
		return res, fmt.Errorf("seed catalog: %w", err)
	}
	a.Logger.Named(logging.ComponentCatalog).Info("catalog seeded",
		zap.Int("merchants_created", res.MerchantsCreated),
		zap.Int("users_created", res.UsersCreated))
	return res, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanup = nil
	return errors.Join(errs...)
}
