package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrNotAdjustable      = errors.New("can only adjust price for active bookings")
	ErrBreakdownMismatch  = errors.New("finance breakdown does not reproduce total price")
	ErrSameRescheduleDate = errors.New("reschedule date equals current booking date")
)

// Booking is the aggregate root. Payments, addon snapshots and reschedule
// history are owned by the booking and persisted with it.
type Booking struct {
	id                uuid.UUID
	createdAt         time.Time
	status            Status
	customer          Customer
	schedule          Schedule
	finance           Finance
	addons            []AddonSnapshot
	photographerID    *uuid.UUID
	rescheduleHistory []RescheduleEntry
}

// NewBooking assembles a new Active booking from an already-validated
// breakdown. The finance invariant is checked here so a caller cannot persist
// a breakdown that disagrees with its own total.
func NewBooking(
	id uuid.UUID,
	createdAt time.Time,
	customer Customer,
	schedule Schedule,
	breakdown Breakdown,
	couponCode *string,
	addons []AddonSnapshot,
	payments []Payment,
	photographerID *uuid.UUID,
) (*Booking, error) {
	expected := breakdown.ServiceBasePrice + breakdown.AddonsTotal - breakdown.BaseDiscount - breakdown.CouponDiscount
	if expected < 0 {
		expected = 0
	}
	if breakdown.Total != expected {
		return nil, ErrBreakdownMismatch
	}

	return &Booking{
		id:        id,
		createdAt: createdAt,
		status:    StatusActive,
		customer:  customer,
		schedule:  schedule,
		finance: Finance{
			TotalPrice:       breakdown.Total,
			ServiceBasePrice: breakdown.ServiceBasePrice,
			BaseDiscount:     breakdown.BaseDiscount,
			AddonsTotal:      breakdown.AddonsTotal,
			CouponDiscount:   breakdown.CouponDiscount,
			CouponCode:       couponCode,
			Payments:         payments,
		},
		addons:         addons,
		photographerID: photographerID,
	}, nil
}

func ReconstructBooking(
	id uuid.UUID,
	createdAt time.Time,
	status Status,
	customer Customer,
	schedule Schedule,
	finance Finance,
	addons []AddonSnapshot,
	photographerID *uuid.UUID,
	rescheduleHistory []RescheduleEntry,
) *Booking {
	return &Booking{
		id:                id,
		createdAt:         createdAt,
		status:            status,
		customer:          customer,
		schedule:          schedule,
		finance:           finance,
		addons:            addons,
		photographerID:    photographerID,
		rescheduleHistory: rescheduleHistory,
	}
}

// TransitionTo applies the status state machine.
func (b *Booking) TransitionTo(next Status) error {
	if !b.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	b.status = next
	return nil
}

// Reschedule moves the booking to a new date, appending to the history
// rather than overwriting it. The caller re-validates window and slot rules
// before invoking this.
func (b *Booking) Reschedule(newDate time.Time, reason string, now time.Time) error {
	if b.status.IsTerminal() {
		return ErrInvalidTransition
	}
	if newDate.Equal(b.schedule.Date()) {
		return ErrSameRescheduleDate
	}

	b.rescheduleHistory = append(b.rescheduleHistory, RescheduleEntry{
		OldDate: b.schedule.Date(),
		NewDate: newDate,
		Reason:  reason,
		At:      now,
	})
	b.schedule = NewSchedule(newDate, b.schedule.Notes(), b.schedule.LocationLink())
	b.status = StatusRescheduled
	return nil
}

// ApplyAddonAdjustment replaces the addon snapshots and recomputes
// addons_total and total_price consistently. Only Active bookings accept
// price adjustments.
func (b *Booking) ApplyAddonAdjustment(addons []AddonSnapshot) error {
	if b.status != StatusActive {
		return ErrNotAdjustable
	}

	var addonsTotal int64
	for _, a := range addons {
		addonsTotal += a.LineTotal()
	}

	total := b.finance.ServiceBasePrice + addonsTotal - b.finance.BaseDiscount - b.finance.CouponDiscount
	if total < 0 {
		total = 0
	}

	b.addons = addons
	b.finance.AddonsTotal = addonsTotal
	b.finance.TotalPrice = total
	return nil
}

// AddPayment appends a payment row. Overpayment is tracked, not corrected.
func (b *Booking) AddPayment(p Payment) error {
	if b.status == StatusCanceled {
		return ErrInvalidTransition
	}
	b.finance.Payments = append(b.finance.Payments, p)
	return nil
}

func (b *Booking) ID() uuid.UUID                        { return b.id }
func (b *Booking) CreatedAt() time.Time                 { return b.createdAt }
func (b *Booking) Status() Status                       { return b.status }
func (b *Booking) Customer() Customer                   { return b.customer }
func (b *Booking) Schedule() Schedule                   { return b.schedule }
func (b *Booking) Finance() Finance                     { return b.finance }
func (b *Booking) Addons() []AddonSnapshot              { return b.addons }
func (b *Booking) PhotographerID() *uuid.UUID           { return b.photographerID }
func (b *Booking) RescheduleHistory() []RescheduleEntry { return b.rescheduleHistory }
