package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/staybook/reservation-backend/internal/metrics"
	"github.com/staybook/reservation-backend/internal/models"
)

const offersKey = "staybook:offers:recommend"

// OffersCache keeps the latest recommendation feed in redis
type OffersCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOffersCache connects to redis. It returns nil, nil when no URL is
// configured, which disables caching.
func NewOffersCache(ctx context.Context, cfg config.RedisConfig) (*OffersCache, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewOffersCacheWithClient(client, cfg.OffersTTL), nil
}

// NewOffersCacheWithClient wraps an existing client
func NewOffersCacheWithClient(client *redis.Client, ttl time.Duration) *OffersCache {
	return &OffersCache{client: client, ttl: ttl}
}

// Get returns the cached feed; ok is false on a miss
func (c *OffersCache) Get(ctx context.Context) ([]models.Room, bool, error) {
	data, err := c.client.Get(ctx, offersKey).Bytes()
	if err == redis.Nil {
		metrics.OffersCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.OffersCacheTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	var rooms []models.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		metrics.OffersCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("corrupt offers cache entry: %w", err)
	}
	metrics.OffersCacheTotal.WithLabelValues("hit").Inc()
	return rooms, true, nil
}

// Set stores the feed with the configured TTL
func (c *OffersCache) Set(ctx context.Context, rooms []models.Room) error {
	b, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, offersKey, b, c.ttl).Err()
}

// Invalidate drops the cached feed
func (c *OffersCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, offersKey).Err()
}

// Close closes the redis client
func (c *OffersCache) Close() error {
	return c.client.Close()
}
