package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/concurrency"
	"github.com/Cheertaboi/flash-coupon-service/internal/discount"
	"github.com/Cheertaboi/flash-coupon-service/internal/geo"
	"github.com/Cheertaboi/flash-coupon-service/internal/ledger"
	"github.com/Cheertaboi/flash-coupon-service/internal/lifecycle"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
	"github.com/Cheertaboi/flash-coupon-service/internal/proximity"
	"github.com/Cheertaboi/flash-coupon-service/internal/reconcile"
	"github.com/Cheertaboi/flash-coupon-service/internal/repository"
)

const listWorkers = 4

// CouponService is the engine surface consumed by the HTTP layer.
type CouponService struct {
	coupons repository.CouponRepository
	records repository.UserCouponRepository
	ledger  *ledger.Ledger
	gate    proximity.Gate
	clock   clock.Clock
	logger  *zap.Logger
}

func NewCouponService(
	coupons repository.CouponRepository,
	records repository.UserCouponRepository,
	l *ledger.Ledger,
	gate proximity.Gate,
	clk clock.Clock,
	logger *zap.Logger,
) *CouponService {
	return &CouponService{
		coupons: coupons,
		records: records,
		ledger:  l,
		gate:    gate,
		clock:   clk,
		logger:  logger,
	}
}

// ListCoupons returns active coupons within radius meters of loc, nearest
// first. A non-positive radius means the view radius.
func (s *CouponService) ListCoupons(ctx context.Context, loc models.Location, radius float64) ([]models.CouponView, error) {
	if err := geo.Validate(loc); err != nil {
		return nil, err
	}
	if radius <= 0 {
		radius = s.gate.ViewRadius
	}

	now := s.clock.Now()
	coupons, err := s.coupons.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}

	views := make([]*models.CouponView, len(coupons))
	concurrency.SimpleWorkerPool(ctx, listWorkers, len(coupons), func(_ context.Context, i int) {
		c := &coupons[i]
		status := lifecycle.Of(c, now)
		if status != lifecycle.Active {
			return
		}
		d := geo.Distance(loc, c.Location)
		if d > radius {
			return
		}
		views[i] = &models.CouponView{
			Coupon:               *c,
			DistanceMeters:       d,
			CurrentDiscount:      discount.CurrentDiscount(c, now),
			Status:               status.String(),
			TimeRemainingMinutes: discount.RemainingMinutes(c.EndTime, now),
			CanRedeem:            d <= s.gate.RedeemRadius,
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.CouponView, 0, len(views))
	for _, v := range views {
		if v != nil {
			out = append(out, *v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out, nil
}

// ActiveCoupons is the authoritative snapshot polled by the expiry watcher.
func (s *CouponService) ActiveCoupons(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.ListActive(ctx, s.clock.Now())
}

func (s *CouponService) CreateCoupon(ctx context.Context, in models.CreateCouponInput) (*models.Coupon, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	schedule, err := discount.NewSchedule(in.Schedule)
	if err != nil {
		return nil, err
	}

	c := &models.Coupon{
		ID:              uuid.NewString(),
		StoreID:         in.StoreID,
		StoreName:       strings.TrimSpace(in.StoreName),
		Location:        in.Location,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		DiscountInitial: in.DiscountInitial,
		Schedule:        schedule.Entries(),
		StartTime:       in.StartTime.UTC(),
		EndTime:         in.EndTime.UTC(),
		CreatedAt:       s.clock.Now(),
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	s.logger.Info("coupon created",
		zap.String("coupon_id", c.ID),
		zap.String("store_id", c.StoreID),
		zap.Time("end_time", c.EndTime))
	return c, nil
}

func (s *CouponService) ObtainCoupon(ctx context.Context, userID, couponID string, loc models.Location) (*models.UserCoupon, error) {
	return s.ledger.Obtain(ctx, userID, couponID, loc)
}

func (s *CouponService) UseCoupon(ctx context.Context, userID, couponID string) (*models.UserCoupon, error) {
	return s.ledger.Use(ctx, userID, couponID)
}

// UserCoupons lists the user's records, newest first, with a derived status.
func (s *CouponService) UserCoupons(ctx context.Context, userID string) ([]models.UserCouponView, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user coupons: %w", err)
	}

	now := s.clock.Now()
	out := make([]models.UserCouponView, 0, len(records))
	for _, uc := range records {
		c, err := s.coupons.Get(ctx, uc.CouponID)
		if err != nil {
			return nil, fmt.Errorf("load coupon %s: %w", uc.CouponID, err)
		}
		out = append(out, userCouponView(uc, c, now))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObtainedAt.After(out[j].ObtainedAt) })
	return out, nil
}

// CouponHolders lists everyone who obtained couponID, newest first.
func (s *CouponService) CouponHolders(ctx context.Context, couponID string) ([]models.UserCouponView, error) {
	c, err := s.coupons.Get(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if c == nil {
		return nil, &models.NotFoundError{Resource: "coupon", ID: couponID}
	}
	records, err := s.records.ListByCoupon(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("list coupon holders: %w", err)
	}

	now := s.clock.Now()
	out := make([]models.UserCouponView, 0, len(records))
	for _, uc := range records {
		out = append(out, userCouponView(uc, c, now))
	}
	return out, nil
}

func (s *CouponService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	now := s.clock.Now()
	total, err := s.coupons.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count coupons: %w", err)
	}
	active, err := s.coupons.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}
	midnight := now.UTC().Truncate(24 * time.Hour)
	today, err := s.records.CountObtainedSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count obtained today: %w", err)
	}
	return &models.AdminStats{TotalCoupons: total, ActiveCoupons: len(active), ObtainedToday: today}, nil
}

// userCouponView derives the display status; a record whose coupon is gone
// counts as expired.
func userCouponView(uc models.UserCoupon, c *models.Coupon, now time.Time) models.UserCouponView {
	view := models.UserCouponView{UserCoupon: uc, Status: models.UserCouponObtained}
	if c != nil {
		view.Title = c.Title
		view.StoreName = c.StoreName
	}
	switch {
	case uc.IsUsed:
		view.Status = models.UserCouponUsed
	case c == nil || lifecycle.Of(c, now) == lifecycle.Expired:
		view.Status = models.UserCouponExpired
	}
	return view
}

func (s *CouponService) Stats(ctx context.Context, userID string, loc models.Location) (*models.CouponStats, error) {
	if err := geo.Validate(loc); err != nil {
		return nil, err
	}
	active, err := s.ActiveCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user coupons: %w", err)
	}

	stats := &models.CouponStats{TotalActive: len(active), UserObtained: len(records)}
	for i := range active {
		if s.gate.CanView(loc, active[i].Location) {
			stats.NearUser++
		}
	}
	return stats, nil
}

func (s *CouponService) ReconcileExpired(previous, current []string) []string {
	return reconcile.Reconcile(previous, current)
}
