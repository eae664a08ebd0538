package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
	"github.com/Cheertaboi/flash-coupon-service/internal/geo"
	"github.com/Cheertaboi/flash-coupon-service/internal/models"
	"github.com/Cheertaboi/flash-coupon-service/internal/proximity"
	"github.com/Cheertaboi/flash-coupon-service/internal/repository"
)

var (
	storeLoc = models.Location{Lat: 35.6812, Lng: 139.7671}
	start    = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
)

func metersNorth(m float64) models.Location {
	return models.Location{Lat: storeLoc.Lat + m/geo.EarthRadiusMeters*180/math.Pi, Lng: storeLoc.Lng}
}

type fixture struct {
	ledger *Ledger
	clock  *clock.Fixed
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	coupons := repository.NewMemoryCouponRepo()
	require.NoError(t, coupons.Create(context.Background(), &models.Coupon{
		ID:              "cafe",
		StoreID:         "s1",
		Location:        storeLoc,
		Title:           "Latte",
		DiscountInitial: 10,
		Schedule: []models.ScheduleEntry{
			{TimeRemainingMinutes: 60, Rate: 20},
			{TimeRemainingMinutes: 30, Rate: 30},
			{TimeRemainingMinutes: 10, Rate: 50},
		},
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}))
	clk := clock.NewFixed(start.Add(75 * time.Minute))
	l := NewLedger(coupons, repository.NewMemoryUserCouponRepo(), proximity.NewGate(20, 1000), clk, zap.NewNop())
	return fixture{ledger: l, clock: clk}
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gate := proximity.NewGate(20, 1000)

	far := metersNorth(300)
	assert.True(t, gate.CanView(far, storeLoc))

	_, err := f.ledger.Obtain(ctx, "u1", "cafe", far)
	var tooFar *models.TooFarError
	require.True(t, errors.As(err, &tooFar), "got %v", err)
	assert.InDelta(t, 280, tooFar.Required, 0.5)

	uc, err := f.ledger.Obtain(ctx, "u1", "cafe", metersNorth(15))
	require.NoError(t, err)
	assert.False(t, uc.IsUsed)
	assert.Equal(t, f.clock.Now(), uc.ObtainedAt)
	// 45 minutes left -> 60 minute bracket
	assert.Equal(t, 20, uc.DiscountAtObtain)

	_, err = f.ledger.Obtain(ctx, "u1", "cafe", metersNorth(15))
	var dup *models.AlreadyObtainedError
	assert.True(t, errors.As(err, &dup))

	f.clock.Advance(time.Minute)
	used, err := f.ledger.Use(ctx, "u1", "cafe")
	require.NoError(t, err)
	require.NotNil(t, used.UsedAt)
	firstUse := *used.UsedAt

	f.clock.Advance(time.Minute)
	_, err = f.ledger.Use(ctx, "u1", "cafe")
	var already *models.AlreadyUsedError
	require.True(t, errors.As(err, &already))
	assert.Equal(t, firstUse, already.UsedAt)
}

func TestObtainConcurrentSinglesWinner(t *testing.T) {
	f := newFixture(t)
	const n = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dups      int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Obtain(context.Background(), "u1", "cafe", storeLoc)
			mu.Lock()
			defer mu.Unlock()
			var dup *models.AlreadyObtainedError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &dup):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, dups)
}

func TestObtainErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ledger.Obtain(ctx, "u1", "missing", storeLoc)
		var nf *models.NotFoundError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("expired at end_time", func(t *testing.T) {
		f := newFixture(t)
		f.clock.Set(start.Add(2 * time.Hour))
		_, err := f.ledger.Obtain(ctx, "u1", "cafe", storeLoc)
		var na *models.NotActiveError
		require.True(t, errors.As(err, &na))
		assert.Equal(t, "expired", na.Status)
	})

	t.Run("not yet started", func(t *testing.T) {
		f := newFixture(t)
		f.clock.Set(start.Add(-time.Second))
		_, err := f.ledger.Obtain(ctx, "u1", "cafe", storeLoc)
		var na *models.NotActiveError
		require.True(t, errors.As(err, &na))
		assert.Equal(t, "not_yet_started", na.Status)
	})

	t.Run("invalid location", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ledger.Obtain(ctx, "u1", "cafe", models.Location{Lat: 91})
		var il *models.InvalidLocationError
		assert.True(t, errors.As(err, &il))
	})
}

func TestUseErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Use(context.Background(), "u1", "cafe")
	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDifferentUsersObtainIndependently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Obtain(ctx, "u1", "cafe", storeLoc)
	require.NoError(t, err)
	_, err = f.ledger.Obtain(ctx, "u2", "cafe", storeLoc)
	require.NoError(t, err)
}
