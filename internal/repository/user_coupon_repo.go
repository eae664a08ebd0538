package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

type UserCouponRepo struct {
	db *sql.DB
}

func NewUserCouponRepo(db *sql.DB) *UserCouponRepo {
	return &UserCouponRepo{db: db}
}

// Insert relies on the (user_id, coupon_id) unique constraint; a conflicting
// insert returns no row.
func (r *UserCouponRepo) Insert(ctx context.Context, uc *models.UserCoupon) (bool, error) {
	query := `
		INSERT INTO user_coupons (id, user_id, coupon_id, obtained_at, is_used, used_at, discount_at_obtain)
		VALUES ($1, $2, $3, $4, false, NULL, $5)
		ON CONFLICT (user_id, coupon_id) DO NOTHING
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query, uc.ID, uc.UserID, uc.CouponID, uc.ObtainedAt, uc.DiscountAtObtain).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert user coupon: %w", err)
	}
	return true, nil
}

func (r *UserCouponRepo) Get(ctx context.Context, userID, couponID string) (*models.UserCoupon, error) {
	query := `
		SELECT id, user_id, coupon_id, obtained_at, is_used, used_at, discount_at_obtain
		FROM user_coupons
		WHERE user_id = $1 AND coupon_id = $2
	`
	uc, err := scanUserCoupon(r.db.QueryRowContext(ctx, query, userID, couponID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return uc, nil
}

// MarkUsed locks the row for the pair and flips is_used inside one transaction.
func (r *UserCouponRepo) MarkUsed(ctx context.Context, userID, couponID string, at time.Time) (*models.UserCoupon, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	query := `
		SELECT id, user_id, coupon_id, obtained_at, is_used, used_at, discount_at_obtain
		FROM user_coupons
		WHERE user_id = $1 AND coupon_id = $2
		FOR UPDATE
	`
	uc, err := scanUserCoupon(tx.QueryRowContext(ctx, query, userID, couponID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lock user coupon: %w", err)
	}
	if uc.IsUsed {
		return uc, false, nil
	}

	update := `
		UPDATE user_coupons
		SET is_used = true, used_at = $3
		WHERE user_id = $1 AND coupon_id = $2 AND is_used = false
	`
	if _, err := tx.ExecContext(ctx, update, userID, couponID, at); err != nil {
		return nil, false, fmt.Errorf("mark used: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("tx commit: %w", err)
	}
	committed = true

	usedAt := at
	uc.IsUsed = true
	uc.UsedAt = &usedAt
	return uc, true, nil
}

func (r *UserCouponRepo) ListByUser(ctx context.Context, userID string) ([]models.UserCoupon, error) {
	return r.list(ctx, `
		SELECT id, user_id, coupon_id, obtained_at, is_used, used_at, discount_at_obtain
		FROM user_coupons
		WHERE user_id = $1
		ORDER BY obtained_at DESC
	`, userID)
}

func (r *UserCouponRepo) ListByCoupon(ctx context.Context, couponID string) ([]models.UserCoupon, error) {
	return r.list(ctx, `
		SELECT id, user_id, coupon_id, obtained_at, is_used, used_at, discount_at_obtain
		FROM user_coupons
		WHERE coupon_id = $1
		ORDER BY obtained_at DESC
	`, couponID)
}

func (r *UserCouponRepo) CountObtainedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_coupons WHERE obtained_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *UserCouponRepo) list(ctx context.Context, query string, arg string) ([]models.UserCoupon, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserCoupon
	for rows.Next() {
		uc, err := scanUserCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *uc)
	}
	return out, rows.Err()
}

func scanUserCoupon(row rowScanner) (*models.UserCoupon, error) {
	var (
		uc     models.UserCoupon
		usedAt sql.NullTime
	)
	if err := row.Scan(&uc.ID, &uc.UserID, &uc.CouponID, &uc.ObtainedAt, &uc.IsUsed, &usedAt, &uc.DiscountAtObtain); err != nil {
		return nil, err
	}
	if usedAt.Valid {
		t := usedAt.Time
		uc.UsedAt = &t
	}
	return &uc, nil
}
