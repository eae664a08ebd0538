package models

import (
	"math"
	"strings"
	"time"
)

type CreateCouponInput struct {
	StoreID         string          `json:"store_id"`
	StoreName       string          `json:"store_name"`
	Location        Location        `json:"store_location"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	DiscountInitial int             `json:"discount_initial"`
	Schedule        []ScheduleEntry `json:"discount_schedule"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         time.Time       `json:"end_time"`
}

// Validate checks everything except the schedule entries, which are checked
// when the schedule value is built.
func (in CreateCouponInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "required"}
	}
	if strings.TrimSpace(in.StoreID) == "" {
		return &ValidationError{Field: "store_id", Message: "required"}
	}
	if !in.Location.Valid() {
		return &InvalidLocationError{Lat: in.Location.Lat, Lng: in.Location.Lng}
	}
	if in.DiscountInitial < 1 || in.DiscountInitial > 100 {
		return &ValidationError{Field: "discount_initial", Message: "must be between 1 and 100"}
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return &ValidationError{Field: "start_time", Message: "start_time and end_time required"}
	}
	if !in.EndTime.After(in.StartTime) {
		return &ValidationError{Field: "end_time", Message: "must be after start_time"}
	}
	return nil
}

// Valid reports whether the coordinate is inside WGS84 bounds.
func (l Location) Valid() bool {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}
