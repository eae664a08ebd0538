package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

const couponKeyPrefix = "coupon:"

// RedisCouponCache shares the coupon cache across service instances. Misses
// and redis errors both fall through to the repository.
type RedisCouponCache struct {
	client *redis.Client
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger
}

func NewRedisCouponCache(client *redis.Client, ttl time.Duration, clk clock.Clock, logger *zap.Logger) *RedisCouponCache {
	return &RedisCouponCache{client: client, ttl: ttl, clock: clk, logger: logger}
}

func (c *RedisCouponCache) Get(ctx context.Context, id string) (*models.Coupon, bool) {
	raw, err := c.client.Get(ctx, couponKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", zap.String("coupon_id", id), zap.Error(err))
		}
		return nil, false
	}
	var coupon models.Coupon
	if err := json.Unmarshal(raw, &coupon); err != nil {
		c.logger.Warn("corrupt cached coupon", zap.String("coupon_id", id), zap.Error(err))
		return nil, false
	}
	return &coupon, true
}

func (c *RedisCouponCache) Set(ctx context.Context, coupon *models.Coupon) {
	raw, err := json.Marshal(coupon)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, couponKeyPrefix+coupon.ID, raw, c.expiry(coupon)).Err(); err != nil {
		c.logger.Warn("redis set failed", zap.String("coupon_id", coupon.ID), zap.Error(err))
	}
}

// expiry caps the configured ttl at the coupon's remaining lifetime.
func (c *RedisCouponCache) expiry(coupon *models.Coupon) time.Duration {
	ttl := c.ttl
	if left := coupon.EndTime.Sub(c.clock.Now()); left > 0 && (ttl <= 0 || left < ttl) {
		ttl = left
	}
	return ttl
}
