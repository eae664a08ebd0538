// Package lifecycle derives a coupon's validity from its time window.
package lifecycle

import (
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

// Status is a coupon's position in its validity window.
type Status int

const (
	NotYetStarted Status = iota
	Active
	Expired
	// Exhausted is reported by callers that track stock; StatusAt never returns it.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case NotYetStarted:
		return "not_yet_started"
	case Active:
		return "active"
	case Expired:
		return "expired"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// StatusAt evaluates the half-open window [start, end) at now.
func StatusAt(start, end, now time.Time) Status {
	switch {
	case now.Before(start):
		return NotYetStarted
	case now.Before(end):
		return Active
	default:
		return Expired
	}
}

// Of is StatusAt over the coupon's own window.
func Of(c *models.Coupon, now time.Time) Status {
	return StatusAt(c.StartTime, c.EndTime, now)
}

// IsActive reports whether c can be listed and obtained at now.
func IsActive(c *models.Coupon, now time.Time) bool {
	return Of(c, now) == Active
}
