package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSchema creates the tables used by CouponRepo and UserCouponRepo.
const PostgresSchema = `
	CREATE TABLE IF NOT EXISTS coupons (
		id                TEXT PRIMARY KEY,
		store_id          TEXT NOT NULL,
		store_name        TEXT NOT NULL DEFAULT '',
		store_lat         DOUBLE PRECISION NOT NULL CHECK (store_lat BETWEEN -90 AND 90),
		store_lng         DOUBLE PRECISION NOT NULL CHECK (store_lng BETWEEN -180 AND 180),
		title             TEXT NOT NULL,
		description       TEXT,
		discount_initial  INTEGER NOT NULL CHECK (discount_initial BETWEEN 1 AND 100),
		discount_schedule JSONB NOT NULL DEFAULT '[]',
		start_time        TIMESTAMPTZ NOT NULL,
		end_time          TIMESTAMPTZ NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_time > start_time)
	);

	CREATE INDEX IF NOT EXISTS idx_coupons_window ON coupons (start_time, end_time);

	CREATE TABLE IF NOT EXISTS user_coupons (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		coupon_id          TEXT NOT NULL REFERENCES coupons(id) ON DELETE CASCADE,
		obtained_at        TIMESTAMPTZ NOT NULL,
		is_used            BOOLEAN NOT NULL DEFAULT false,
		used_at            TIMESTAMPTZ,
		discount_at_obtain INTEGER NOT NULL,
		UNIQUE (user_id, coupon_id)
	);

	CREATE INDEX IF NOT EXISTS idx_user_coupons_coupon ON user_coupons (coupon_id);
`

func MigratePostgres(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
