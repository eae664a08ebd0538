package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

type MemoryCouponRepo struct {
	mu      sync.RWMutex
	coupons map[string]models.Coupon
}

func NewMemoryCouponRepo() *MemoryCouponRepo {
	return &MemoryCouponRepo{coupons: make(map[string]models.Coupon)}
}

func (r *MemoryCouponRepo) Create(_ context.Context, c *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Schedule = append([]models.ScheduleEntry(nil), c.Schedule...)
	r.coupons[c.ID] = cp
	return nil
}

func (r *MemoryCouponRepo) Get(_ context.Context, id string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryCouponRepo) ListActive(_ context.Context, now time.Time) ([]models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		if !now.Before(c.StartTime) && now.Before(c.EndTime) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryCouponRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.coupons), nil
}

const lockStripes = 64

// MemoryUserCouponRepo serializes writers per (user, coupon) through striped
// locks; the map itself is guarded separately.
type MemoryUserCouponRepo struct {
	stripes [lockStripes]sync.Mutex
	mu      sync.RWMutex
	records map[pairKey]models.UserCoupon
}

type pairKey struct {
	userID   string
	couponID string
}

func NewMemoryUserCouponRepo() *MemoryUserCouponRepo {
	return &MemoryUserCouponRepo{records: make(map[pairKey]models.UserCoupon)}
}

func (r *MemoryUserCouponRepo) lockFor(k pairKey) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k.userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(k.couponID))
	return &r.stripes[h.Sum32()%lockStripes]
}

func (r *MemoryUserCouponRepo) Insert(_ context.Context, uc *models.UserCoupon) (bool, error) {
	k := pairKey{uc.UserID, uc.CouponID}
	l := r.lockFor(k)
	l.Lock()
	defer l.Unlock()

	r.mu.RLock()
	_, exists := r.records[k]
	r.mu.RUnlock()
	if exists {
		return false, nil
	}

	r.mu.Lock()
	r.records[k] = *uc
	r.mu.Unlock()
	return true, nil
}

func (r *MemoryUserCouponRepo) Get(_ context.Context, userID, couponID string) (*models.UserCoupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uc, ok := r.records[pairKey{userID, couponID}]
	if !ok {
		return nil, nil
	}
	return &uc, nil
}

func (r *MemoryUserCouponRepo) MarkUsed(_ context.Context, userID, couponID string, at time.Time) (*models.UserCoupon, bool, error) {
	k := pairKey{userID, couponID}
	l := r.lockFor(k)
	l.Lock()
	defer l.Unlock()

	r.mu.RLock()
	uc, ok := r.records[k]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if uc.IsUsed {
		return &uc, false, nil
	}

	usedAt := at
	uc.IsUsed = true
	uc.UsedAt = &usedAt

	r.mu.Lock()
	r.records[k] = uc
	r.mu.Unlock()
	return &uc, true, nil
}

func (r *MemoryUserCouponRepo) ListByUser(_ context.Context, userID string) ([]models.UserCoupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.UserCoupon
	for k, uc := range r.records {
		if k.userID == userID {
			out = append(out, uc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObtainedAt.After(out[j].ObtainedAt) })
	return out, nil
}

func (r *MemoryUserCouponRepo) ListByCoupon(_ context.Context, couponID string) ([]models.UserCoupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.UserCoupon
	for k, uc := range r.records {
		if k.couponID == couponID {
			out = append(out, uc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObtainedAt.After(out[j].ObtainedAt) })
	return out, nil
}

func (r *MemoryUserCouponRepo) CountObtainedSince(_ context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, uc := range r.records {
		if !uc.ObtainedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
