package booking

import (
	"errors"
	"math"
	"time"
)

var (
	ErrMinNoticeViolated = errors.New("booking violates minimum notice requirement")
	ErrMaxAheadViolated  = errors.New("booking exceeds maximum advance window")
)

// Window holds the configured advance-notice rules for new bookings.
// MinNoticeDays 1 means no same-day booking; 0 allows it.
type Window struct {
	MinNoticeDays int
	MaxAheadDays  int
}

// DaysUntil computes the calendar-day distance from now to at: both sides are
// truncated to midnight in now's location before subtracting, so time-of-day
// never influences the rule check.
func DaysUntil(now, at time.Time) int {
	at = at.In(now.Location())
	bookingMidnight := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, now.Location())
	todayMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(math.Ceil(bookingMidnight.Sub(todayMidnight).Hours() / 24))
}

// Validate checks the proposed booking date against the window and returns
// the calendar-day distance along with any violation.
func (w Window) Validate(now, at time.Time) (int, error) {
	daysDiff := DaysUntil(now, at)
	if daysDiff < w.MinNoticeDays {
		return daysDiff, ErrMinNoticeViolated
	}
	if daysDiff > w.MaxAheadDays {
		return daysDiff, ErrMaxAheadViolated
	}
	return daysDiff, nil
}
