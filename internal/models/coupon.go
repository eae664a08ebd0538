package models

import "time"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScheduleEntry raises the displayed rate once the remaining lifetime drops
// to TimeRemainingMinutes or below.
type ScheduleEntry struct {
	TimeRemainingMinutes int `json:"time_remaining_minutes"`
	Rate                 int `json:"rate"`
}

type Coupon struct {
	ID              string          `json:"id"`
	StoreID         string          `json:"store_id"`
	StoreName       string          `json:"store_name"`
	Location        Location        `json:"store_location"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	DiscountInitial int             `json:"discount_initial"`
	Schedule        []ScheduleEntry `json:"discount_schedule"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CouponView is the read model handed to listing clients.
type CouponView struct {
	Coupon
	DistanceMeters       float64 `json:"distance_meters"`
	CurrentDiscount      int     `json:"current_discount"`
	Status               string  `json:"status"`
	TimeRemainingMinutes int     `json:"time_remaining_minutes"`
	CanRedeem            bool    `json:"can_redeem"`
}
