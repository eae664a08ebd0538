package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

func TestRedisCouponCacheExpiryFollowsClock(t *testing.T) {
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	c := NewRedisCouponCache(nil, 5*time.Minute, clk, zap.NewNop())

	coupon := &models.Coupon{ID: "c1", EndTime: now.Add(2 * time.Minute)}
	assert.Equal(t, 2*time.Minute, c.expiry(coupon))

	coupon.EndTime = now.Add(time.Hour)
	assert.Equal(t, 5*time.Minute, c.expiry(coupon))

	clk.Advance(58 * time.Minute)
	assert.Equal(t, 2*time.Minute, c.expiry(coupon))

	clk.Advance(time.Hour)
	assert.Equal(t, 5*time.Minute, c.expiry(coupon), "an ended coupon keeps the configured ttl")
}

func TestRedisCouponCache(t *testing.T) {
	addr := os.Getenv("COUPON_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COUPON_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	c := NewRedisCouponCache(client, time.Minute, clock.Real{}, zap.NewNop())
	id := "test-" + time.Now().Format("150405.000000")

	_, ok := c.Get(ctx, id)
	assert.False(t, ok)

	c.Set(ctx, &models.Coupon{ID: id, Title: "Bento", EndTime: time.Now().Add(10 * time.Second)})
	got, ok := c.Get(ctx, id)
	require.True(t, ok)
	assert.Equal(t, "Bento", got.Title)

	ttl, err := client.TTL(ctx, couponKeyPrefix+id).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 10*time.Second)
}
