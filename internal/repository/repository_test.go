package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

var baseTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func sampleCoupon(id string, start, end time.Time) *models.Coupon {
	return &models.Coupon{
		ID:              id,
		StoreID:         "store-1",
		StoreName:       "Kissa Hoshi",
		Location:        models.Location{Lat: 35.6812, Lng: 139.7671},
		Title:           "Evening coffee",
		DiscountInitial: 10,
		Schedule:        []models.ScheduleEntry{{TimeRemainingMinutes: 30, Rate: 30}},
		StartTime:       start,
		EndTime:         end,
		CreatedAt:       start,
	}
}

func testCouponRepo(t *testing.T, repo CouponRepository) {
	ctx := context.Background()

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, sampleCoupon("a", baseTime.Add(-time.Hour), baseTime.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleCoupon("b", baseTime.Add(-2*time.Hour), baseTime)))
	require.NoError(t, repo.Create(ctx, sampleCoupon("c", baseTime.Add(time.Minute), baseTime.Add(time.Hour))))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Evening coffee", got.Title)
	assert.Equal(t, []models.ScheduleEntry{{TimeRemainingMinutes: 30, Rate: 30}}, got.Schedule)
	assert.True(t, got.EndTime.Equal(baseTime.Add(time.Hour)))

	active, err := repo.ListActive(ctx, baseTime)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testUserCouponRepo(t *testing.T, repo UserCouponRepository) {
	ctx := context.Background()

	uc := &models.UserCoupon{ID: "uc-1", UserID: "u1", CouponID: "a", ObtainedAt: baseTime, DiscountAtObtain: 20}
	ok, err := repo.Insert(ctx, uc)
	require.NoError(t, err)
	assert.True(t, ok)

	dup := &models.UserCoupon{ID: "uc-2", UserID: "u1", CouponID: "a", ObtainedAt: baseTime.Add(time.Minute)}
	ok, err = repo.Insert(ctx, dup)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, "u1", "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "uc-1", got.ID)
	assert.False(t, got.IsUsed)
	assert.Nil(t, got.UsedAt)

	usedAt := baseTime.Add(5 * time.Minute)
	rec, changed, err := repo.MarkUsed(ctx, "u1", "a", usedAt)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, rec.UsedAt)
	assert.True(t, rec.UsedAt.Equal(usedAt))

	rec, changed, err = repo.MarkUsed(ctx, "u1", "a", usedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	require.NotNil(t, rec.UsedAt)
	assert.True(t, rec.UsedAt.Equal(usedAt))

	rec, changed, err = repo.MarkUsed(ctx, "u1", "missing", usedAt)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, rec)

	_, err = repo.Insert(ctx, &models.UserCoupon{ID: "uc-3", UserID: "u1", CouponID: "b", ObtainedAt: baseTime.Add(time.Hour)})
	require.NoError(t, err)
	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].CouponID)

	_, err = repo.Insert(ctx, &models.UserCoupon{ID: "uc-4", UserID: "u2", CouponID: "a", ObtainedAt: baseTime.Add(2 * time.Hour)})
	require.NoError(t, err)
	holders, err := repo.ListByCoupon(ctx, "a")
	require.NoError(t, err)
	require.Len(t, holders, 2)
	assert.Equal(t, "u2", holders[0].UserID)
	assert.Equal(t, "u1", holders[1].UserID)
	assert.True(t, holders[1].IsUsed)

	none, err := repo.ListByCoupon(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, none)

	since, err := repo.CountObtainedSince(ctx, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, since)
}

func TestMemoryCouponRepo(t *testing.T) {
	testCouponRepo(t, NewMemoryCouponRepo())
}

func TestMemoryUserCouponRepo(t *testing.T) {
	testUserCouponRepo(t, NewMemoryUserCouponRepo())
}

func TestMemoryInsertConcurrent(t *testing.T) {
	repo := NewMemoryUserCouponRepo()
	const n = 32

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Insert(context.Background(), &models.UserCoupon{UserID: "u", CouponID: "c", ObtainedAt: baseTime})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inserted)
}

func TestMemoryMarkUsedConcurrent(t *testing.T) {
	repo := NewMemoryUserCouponRepo()
	_, err := repo.Insert(context.Background(), &models.UserCoupon{UserID: "u", CouponID: "c", ObtainedAt: baseTime})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := repo.MarkUsed(context.Background(), "u", "c", baseTime.Add(time.Duration(i)*time.Second))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, changed)
}
