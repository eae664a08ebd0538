package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

const couponColumns = `
	id, store_id, store_name, store_lat, store_lng, title, description,
	discount_initial, discount_schedule, start_time, end_time, created_at`

func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	schedule, err := json.Marshal(c.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.StoreID,
		c.StoreName,
		c.Location.Lat,
		c.Location.Lng,
		c.Title,
		c.Description,
		c.DiscountInitial,
		schedule,
		c.StartTime,
		c.EndTime,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (r *CouponRepo) Get(ctx context.Context, id string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CouponRepo) ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE start_time <= $1 AND end_time > $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *CouponRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var (
		c           models.Coupon
		description sql.NullString
		schedule    []byte
	)
	err := row.Scan(
		&c.ID,
		&c.StoreID,
		&c.StoreName,
		&c.Location.Lat,
		&c.Location.Lng,
		&c.Title,
		&description,
		&c.DiscountInitial,
		&schedule,
		&c.StartTime,
		&c.EndTime,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &c.Schedule); err != nil {
			return nil, fmt.Errorf("decode schedule for coupon %s: %w", c.ID, err)
		}
	}
	return &c, nil
}
