// Package discount evaluates time-escalating discount schedules.
package discount

import (
	"fmt"
	"sort"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/models"
)

// Schedule is an immutable set of escalation brackets, kept sorted by
// threshold ascending with ties broken by rate descending.
type Schedule struct {
	entries []models.ScheduleEntry
}

// NewSchedule validates and copies entries. Input order does not matter.
func NewSchedule(entries []models.ScheduleEntry) (Schedule, error) {
	sorted := make([]models.ScheduleEntry, 0, len(entries))
	for i, e := range entries {
		if e.TimeRemainingMinutes <= 0 {
			return Schedule{}, &models.ValidationError{
				Field:   fmt.Sprintf("discount_schedule[%d].time_remaining_minutes", i),
				Message: "must be greater than 0",
			}
		}
		if e.Rate < 1 || e.Rate > 100 {
			return Schedule{}, &models.ValidationError{
				Field:   fmt.Sprintf("discount_schedule[%d].rate", i),
				Message: "must be between 1 and 100",
			}
		}
		sorted = append(sorted, e)
	}
	sortEntries(sorted)
	return Schedule{entries: sorted}, nil
}

// FromCoupon builds a schedule from stored entries without validating them;
// stored coupons were validated on create.
func FromCoupon(c *models.Coupon) Schedule {
	sorted := append([]models.ScheduleEntry(nil), c.Schedule...)
	sortEntries(sorted)
	return Schedule{entries: sorted}
}

// Entries returns a copy of the normalized entries.
func (s Schedule) Entries() []models.ScheduleEntry {
	return append([]models.ScheduleEntry(nil), s.entries...)
}

// RemainingMinutes rounds the time left up to whole minutes.
func RemainingMinutes(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	minutes := int(left / time.Minute)
	if left%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// Rate returns the rate for the given remaining minutes: the entry with the
// smallest threshold still >= remaining, or initial when none applies.
// Among equal thresholds the highest rate wins.
func (s Schedule) Rate(initial, remaining int) int {
	// entries are ascending, so the first match is the tightest bracket
	idx := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].TimeRemainingMinutes >= remaining
	})
	if idx == len(s.entries) {
		return initial
	}
	return s.entries[idx].Rate
}

// Current evaluates the schedule at now. Outside [start, end) it falls back
// to initial; callers are expected to check the lifecycle first.
func (s Schedule) Current(initial int, start, end, now time.Time) int {
	if now.Before(start) || !now.Before(end) {
		return initial
	}
	return s.Rate(initial, RemainingMinutes(end, now))
}

// CurrentDiscount is a convenience wrapper over a stored coupon.
func CurrentDiscount(c *models.Coupon, now time.Time) int {
	return FromCoupon(c).Current(c.DiscountInitial, c.StartTime, c.EndTime, now)
}

func sortEntries(entries []models.ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TimeRemainingMinutes != entries[j].TimeRemainingMinutes {
			return entries[i].TimeRemainingMinutes < entries[j].TimeRemainingMinutes
		}
		return entries[i].Rate > entries[j].Rate
	})
}
