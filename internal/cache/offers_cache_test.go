package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffersCache_Disabled(t *testing.T) {
	cache, err := NewOffersCache(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, cache)
}

func TestNewOffersCache_InvalidURL(t *testing.T) {
	_, err := NewOffersCache(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}

func TestOffersCache_UnreachableRedis(t *testing.T) {
	// Grab a free port and close it so dialing fails fast
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewOffersCacheWithClient(client, time.Minute)
	defer cache.Close()

	rooms, ok, err := cache.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, rooms)
	assert.Error(t, cache.Set(context.Background(), nil))
}
