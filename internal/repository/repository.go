package repository

import (
	"context"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

// CouponRepository stores coupons. Get returns (nil, nil) for a missing id.
type CouponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	Get(ctx context.Context, id string) (*models.Coupon, error)
	// ListActive returns coupons whose window contains now.
	ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error)
	Count(ctx context.Context) (int, error)
}

// UserCouponRepository stores redemption records keyed by (user, coupon).
type UserCouponRepository interface {
	// Insert stores uc unless a record for the pair exists, in which case it
	// returns false and leaves the store unchanged.
	Insert(ctx context.Context, uc *models.UserCoupon) (bool, error)
	// Get returns (nil, nil) when the pair has no record.
	Get(ctx context.Context, userID, couponID string) (*models.UserCoupon, error)
	// MarkUsed flips is_used at most once. It returns the record as stored
	// after the call and whether this call made the transition; a nil record
	// means the pair does not exist.
	MarkUsed(ctx context.Context, userID, couponID string, at time.Time) (*models.UserCoupon, bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserCoupon, error)
	// ListByCoupon returns every holder of couponID, newest first.
	ListByCoupon(ctx context.Context, couponID string) ([]models.UserCoupon, error)
	CountObtainedSince(ctx context.Context, since time.Time) (int, error)
}
