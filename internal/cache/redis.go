package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rewards-optimizer-go/internal/rewards"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache shares recommendations across service replicas.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(cfg RedisConfig, logger *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	return &RedisCache{rdb: rdb, ttl: cfg.TTL}, nil
}

func (c *RedisCache) generation(ctx context.Context, userID uint) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, userID uint, merchant string, amount float64) (rewards.Recommendation, bool, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return rewards.Recommendation{}, false, err
	}
	b, err := c.rdb.Get(ctx, entryKey(userID, gen, merchant, amount)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rewards.Recommendation{}, false, nil
	}
	if err != nil {
		return rewards.Recommendation{}, false, err
	}

	var rec rewards.Recommendation
	if err := json.Unmarshal(b, &rec); err != nil {
		return rewards.Recommendation{}, false, fmt.Errorf("decode cached recommendation: %w", err)
	}
	return rec, true, nil
}

func (c *RedisCache) Put(ctx context.Context, userID uint, merchant string, amount float64, rec rewards.Recommendation) error {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(userID, gen, merchant, amount), b, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userID uint) error {
	return c.rdb.Incr(ctx, generationKey(userID)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
