package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

type couponRecord struct {
	ID              string                 `gorm:"primaryKey;size:64"`
	StoreID         string                 `gorm:"size:64;not null;index"`
	StoreName       string                 `gorm:"size:255"`
	StoreLat        float64                `gorm:"not null"`
	StoreLng        float64                `gorm:"not null"`
	Title           string                 `gorm:"size:255;not null"`
	Description     string                 `gorm:"type:text"`
	DiscountInitial int                    `gorm:"not null"`
	Schedule        []models.ScheduleEntry `gorm:"serializer:json"`
	StartTime       time.Time              `gorm:"not null;index:idx_coupon_window,priority:1"`
	EndTime         time.Time              `gorm:"not null;index:idx_coupon_window,priority:2"`
	CreatedAt       time.Time
}

func (couponRecord) TableName() string { return "coupons" }

type userCouponRecord struct {
	ID               string `gorm:"primaryKey;size:64"`
	UserID           string `gorm:"size:64;not null;uniqueIndex:ux_user_coupon,priority:1"`
	CouponID         string `gorm:"size:64;not null;uniqueIndex:ux_user_coupon,priority:2;index"`
	ObtainedAt       time.Time
	IsUsed           bool `gorm:"not null;default:false"`
	UsedAt           *time.Time
	DiscountAtObtain int `gorm:"not null"`
}

func (userCouponRecord) TableName() string { return "user_coupons" }

// AutoMigrateGorm creates the coupon tables through gorm.
func AutoMigrateGorm(db *gorm.DB) error {
	return db.AutoMigrate(&couponRecord{}, &userCouponRecord{})
}

type GormCouponRepo struct {
	db *gorm.DB
}

func NewGormCouponRepo(db *gorm.DB) *GormCouponRepo {
	return &GormCouponRepo{db: db}
}

func (r *GormCouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	rec := couponRecord{
		ID:              c.ID,
		StoreID:         c.StoreID,
		StoreName:       c.StoreName,
		StoreLat:        c.Location.Lat,
		StoreLng:        c.Location.Lng,
		Title:           c.Title,
		Description:     c.Description,
		DiscountInitial: c.DiscountInitial,
		Schedule:        c.Schedule,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		CreatedAt:       c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (r *GormCouponRepo) Get(ctx context.Context, id string) (*models.Coupon, error) {
	var rec couponRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c := rec.toModel()
	return &c, nil
}

func (r *GormCouponRepo) ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	var recs []couponRecord
	err := r.db.WithContext(ctx).
		Where("start_time <= ? AND end_time > ?", now, now).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Coupon, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

func (r *GormCouponRepo) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&couponRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (rec couponRecord) toModel() models.Coupon {
	return models.Coupon{
		ID:              rec.ID,
		StoreID:         rec.StoreID,
		StoreName:       rec.StoreName,
		Location:        models.Location{Lat: rec.StoreLat, Lng: rec.StoreLng},
		Title:           rec.Title,
		Description:     rec.Description,
		DiscountInitial: rec.DiscountInitial,
		Schedule:        rec.Schedule,
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		CreatedAt:       rec.CreatedAt,
	}
}

type GormUserCouponRepo struct {
	db *gorm.DB
}

func NewGormUserCouponRepo(db *gorm.DB) *GormUserCouponRepo {
	return &GormUserCouponRepo{db: db}
}

func (r *GormUserCouponRepo) Insert(ctx context.Context, uc *models.UserCoupon) (bool, error) {
	rec := userCouponRecord{
		ID:               uc.ID,
		UserID:           uc.UserID,
		CouponID:         uc.CouponID,
		ObtainedAt:       uc.ObtainedAt,
		DiscountAtObtain: uc.DiscountAtObtain,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "coupon_id"}},
			DoNothing: true,
		}).
		Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("insert user coupon: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormUserCouponRepo) Get(ctx context.Context, userID, couponID string) (*models.UserCoupon, error) {
	var rec userCouponRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	uc := rec.toModel()
	return &uc, nil
}

// MarkUsed uses a conditional update so only one caller can see RowsAffected == 1.
func (r *GormUserCouponRepo) MarkUsed(ctx context.Context, userID, couponID string, at time.Time) (*models.UserCoupon, bool, error) {
	var (
		out     *models.UserCoupon
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userCouponRecord{}).
			Where("user_id = ? AND coupon_id = ? AND is_used = ?", userID, couponID, false).
			Updates(map[string]interface{}{"is_used": true, "used_at": at})
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected == 1

		var rec userCouponRecord
		if err := tx.Where("user_id = ? AND coupon_id = ?", userID, couponID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		uc := rec.toModel()
		out = &uc
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("mark used: %w", err)
	}
	return out, changed, nil
}

func (r *GormUserCouponRepo) ListByUser(ctx context.Context, userID string) ([]models.UserCoupon, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *GormUserCouponRepo) ListByCoupon(ctx context.Context, couponID string) ([]models.UserCoupon, error) {
	return r.list(ctx, "coupon_id = ?", couponID)
}

func (r *GormUserCouponRepo) CountObtainedSince(ctx context.Context, since time.Time) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userCouponRecord{}).
		Where("obtained_at >= ?", since).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *GormUserCouponRepo) list(ctx context.Context, cond string, arg string) ([]models.UserCoupon, error) {
	var recs []userCouponRecord
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("obtained_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.UserCoupon, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

func (rec userCouponRecord) toModel() models.UserCoupon {
	return models.UserCoupon{
		ID:               rec.ID,
		UserID:           rec.UserID,
		CouponID:         rec.CouponID,
		ObtainedAt:       rec.ObtainedAt,
		IsUsed:           rec.IsUsed,
		UsedAt:           rec.UsedAt,
		DiscountAtObtain: rec.DiscountAtObtain,
	}
}
