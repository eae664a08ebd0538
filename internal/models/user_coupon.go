package models

import "time"

const (
	UserCouponObtained = "obtained"
	UserCouponUsed     = "used"
	UserCouponExpired  = "expired"
)

// UserCoupon is one user's claim on one coupon. (UserID, CouponID) is unique.
type UserCoupon struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	CouponID         string     `json:"coupon_id"`
	ObtainedAt       time.Time  `json:"obtained_at"`
	IsUsed           bool       `json:"is_used"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
	DiscountAtObtain int        `json:"discount_at_obtain"`
}

// UserCouponView joins a record with its coupon for the "my coupons" list.
type UserCouponView struct {
	UserCoupon
	Title     string `json:"title"`
	StoreName string `json:"store_name"`
	Status    string `json:"status"`
}

type CouponStats struct {
	TotalActive  int `json:"total_active"`
	NearUser     int `json:"near_user"`
	UserObtained int `json:"user_obtained"`
}

// AdminStats summarises the catalog and the ledger for store operators.
// ObtainedToday counts claims since UTC midnight.
type AdminStats struct {
	TotalCoupons  int `json:"total_coupons"`
	ActiveCoupons int `json:"active_coupons"`
	ObtainedToday int `json:"coupons_obtained_today"`
}
