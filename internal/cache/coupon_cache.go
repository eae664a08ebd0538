package cache

import (
	"context"
	"sync"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

// CouponCache holds coupons by id. Coupons are immutable once created, so
// entries never need invalidating on the read path.
type CouponCache interface {
	Get(ctx context.Context, id string) (*models.Coupon, bool)
	Set(ctx context.Context, c *models.Coupon)
}

type MemoryCouponCache struct {
	mu    sync.RWMutex
	store map[string]models.Coupon
}

func NewMemoryCouponCache() *MemoryCouponCache {
	return &MemoryCouponCache{
		store: make(map[string]models.Coupon),
	}
}

func (c *MemoryCouponCache) Get(_ context.Context, id string) (*models.Coupon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.store[id]
	if !ok {
		return nil, false
	}
	return &val, true
}

func (c *MemoryCouponCache) Set(_ context.Context, coupon *models.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[coupon.ID] = *coupon
}
