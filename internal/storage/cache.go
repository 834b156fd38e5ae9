package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedResolver хранит выданные ссылки в Redis, пока не истекла половина их срока.
type CachedResolver struct {
	next   URLResolver
	client *redis.Client
	log    *zap.Logger
}

// NewRedisClient подключается к Redis и проверяет соединение.
func NewRedisClient(addr, password string, db int, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected", zap.String("addr", addr))
	return rdb, nil
}

// NewCachedResolver оборачивает resolver кэшем.
func NewCachedResolver(next URLResolver, client *redis.Client, log *zap.Logger) *CachedResolver {
	return &CachedResolver{next: next, client: client, log: log}
}

// ResolveURL реализует URLResolver. Недоступность Redis не мешает выдаче ссылки.
func (c *CachedResolver) ResolveURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	cacheKey := fmt.Sprintf("receipt-url:%s:%d", key, int64(ttl/time.Second))

	cached, err := c.client.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		c.log.Warn("receipt url cache read failed", zap.String("key", key), zap.Error(err))
	}

	link, err := c.next.ResolveURL(ctx, key, ttl)
	if err != nil {
		return "", err
	}

	if ttl/2 > 0 {
		if err := c.client.Set(ctx, cacheKey, link, ttl/2).Err(); err != nil {
			c.log.Warn("receipt url cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return link, nil
}
