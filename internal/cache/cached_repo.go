package cache

import (
	"context"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
	"github.com/Cheertaboi/flash-coupon-service/internal/repository"
)

// CachedCouponRepo serves Get from a CouponCache before hitting the store.
type CachedCouponRepo struct {
	repo  repository.CouponRepository
	cache CouponCache
}

func NewCachedCouponRepo(repo repository.CouponRepository, cache CouponCache) *CachedCouponRepo {
	return &CachedCouponRepo{repo: repo, cache: cache}
}

func (r *CachedCouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	if err := r.repo.Create(ctx, c); err != nil {
		return err
	}
	r.cache.Set(ctx, c)
	return nil
}

func (r *CachedCouponRepo) Get(ctx context.Context, id string) (*models.Coupon, error) {
	if c, ok := r.cache.Get(ctx, id); ok {
		return c, nil
	}
	c, err := r.repo.Get(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	r.cache.Set(ctx, c)
	return c, nil
}

func (r *CachedCouponRepo) ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	return r.repo.ListActive(ctx, now)
}

func (r *CachedCouponRepo) Count(ctx context.Context) (int, error) {
	return r.repo.Count(ctx)
}
