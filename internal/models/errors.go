package models

import (
	"fmt"
	"time"
)

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

type NotActiveError struct {
	CouponID string
	Status   string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("coupon %q is not active (status %s)", e.CouponID, e.Status)
}

// TooFarError carries how many meters the user still has to close.
type TooFarError struct {
	Distance  float64
	Threshold float64
	Required  float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("must be within %.0fm of the store, currently %.1fm away (%.1fm to go)", e.Threshold, e.Distance, e.Required)
}

type AlreadyObtainedError struct {
	UserID   string
	CouponID string
}

func (e *AlreadyObtainedError) Error() string {
	return fmt.Sprintf("user %q already holds coupon %q", e.UserID, e.CouponID)
}

type AlreadyUsedError struct {
	UserID   string
	CouponID string
	UsedAt   time.Time
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("coupon %q already used by %q at %s", e.CouponID, e.UserID, e.UsedAt.Format(time.RFC3339))
}

type InvalidLocationError struct {
	Lat float64
	Lng float64
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location lat=%v lng=%v", e.Lat, e.Lng)
}

// ValidationError reports malformed create input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
