// Package ledger records coupon redemptions: one "obtained" event and at most
// one "used" event per (user, coupon) pair.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/discount"
	"github.com/Cheertaboi/flash-coupon-service/internal/geo"
	"github.com/Cheertaboi/flash-coupon-service/internal/lifecycle"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
	"github.com/Cheertaboi/flash-coupon-service/internal/proximity"
	"github.com/Cheertaboi/flash-coupon-service/internal/repository"
)

type Ledger struct {
	coupons repository.CouponRepository
	records repository.UserCouponRepository
	gate    proximity.Gate
	clock   clock.Clock
	logger  *zap.Logger
}

func NewLedger(
	coupons repository.CouponRepository,
	records repository.UserCouponRepository,
	gate proximity.Gate,
	clk clock.Clock,
	logger *zap.Logger,
) *Ledger {
	return &Ledger{
		coupons: coupons,
		records: records,
		gate:    gate,
		clock:   clk,
		logger:  logger,
	}
}

// Obtain claims couponID for userID standing at loc. The store's
// insert-if-absent is the authority on duplicates; the earlier lookup only
// gives a holder a better message than "too far".
func (l *Ledger) Obtain(ctx context.Context, userID, couponID string, loc models.Location) (*models.UserCoupon, error) {
	c, err := l.coupons.Get(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if c == nil {
		return nil, &models.NotFoundError{Resource: "coupon", ID: couponID}
	}

	now := l.clock.Now()
	if status := lifecycle.Of(c, now); status != lifecycle.Active {
		return nil, &models.NotActiveError{CouponID: couponID, Status: status.String()}
	}

	existing, err := l.records.Get(ctx, userID, couponID)
	if err != nil {
		return nil, fmt.Errorf("load user coupon: %w", err)
	}
	if existing != nil {
		return nil, &models.AlreadyObtainedError{UserID: userID, CouponID: couponID}
	}

	if err := geo.Validate(loc); err != nil {
		return nil, err
	}
	if err := l.gate.CheckRedeem(loc, c.Location); err != nil {
		return nil, err
	}

	uc := &models.UserCoupon{
		ID:               uuid.NewString(),
		UserID:           userID,
		CouponID:         couponID,
		ObtainedAt:       now,
		DiscountAtObtain: discount.CurrentDiscount(c, now),
	}
	inserted, err := l.records.Insert(ctx, uc)
	if err != nil {
		return nil, fmt.Errorf("record obtain: %w", err)
	}
	if !inserted {
		return nil, &models.AlreadyObtainedError{UserID: userID, CouponID: couponID}
	}

	l.logger.Info("coupon obtained",
		zap.String("user_id", userID),
		zap.String("coupon_id", couponID),
		zap.Int("discount", uc.DiscountAtObtain))
	return uc, nil
}

// Use marks the user's coupon as used. A second call fails with
// *models.AlreadyUsedError and leaves used_at untouched.
func (l *Ledger) Use(ctx context.Context, userID, couponID string) (*models.UserCoupon, error) {
	uc, changed, err := l.records.MarkUsed(ctx, userID, couponID, l.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("record use: %w", err)
	}
	if uc == nil {
		return nil, &models.NotFoundError{Resource: "user_coupon", ID: userID + "/" + couponID}
	}
	if !changed {
		usedErr := &models.AlreadyUsedError{UserID: userID, CouponID: couponID}
		if uc.UsedAt != nil {
			usedErr.UsedAt = *uc.UsedAt
		}
		return nil, usedErr
	}

	l.logger.Info("coupon used",
		zap.String("user_id", userID),
		zap.String("coupon_id", couponID))
	return uc, nil
}
