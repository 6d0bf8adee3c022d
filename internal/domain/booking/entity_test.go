package booking_test

import (
	"testing"
	"time"

	"studio-booking/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T) *booking.Booking {
	t.Helper()

	customer, err := booking.NewCustomer("Sari Dewi", "081234567890", "Wedding", uuid.New())
	require.NoError(t, err)

	schedule := booking.NewSchedule(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), "outdoor shoot", "")

	breakdown := booking.Breakdown{
		ServiceBasePrice: 500000,
		BaseDiscount:     50000,
		AddonsTotal:      100000,
		CouponDiscount:   0,
		Total:            550000,
	}

	payment, err := booking.NewPayment(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), 200000, "down payment")
	require.NoError(t, err)

	b, err := booking.NewBooking(
		uuid.New(),
		time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		customer,
		schedule,
		breakdown,
		nil,
		nil,
		[]booking.Payment{payment},
		nil,
	)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	t.Run("starts active with finance copied from breakdown", func(t *testing.T) {
		b := newTestBooking(t)

		assert.Equal(t, booking.StatusActive, b.Status())
		assert.Equal(t, int64(550000), b.Finance().TotalPrice)
		assert.Equal(t, int64(100000), b.Finance().AddonsTotal)
	})

	t.Run("rejects breakdown that disagrees with its total", func(t *testing.T) {
		customer, err := booking.NewCustomer("Budi", "0811111111", "Family", uuid.New())
		require.NoError(t, err)

		bad := booking.Breakdown{ServiceBasePrice: 100000, Total: 99999}
		_, err = booking.NewBooking(uuid.New(), time.Now(), customer,
			booking.NewSchedule(time.Now(), "", ""), bad, nil, nil, nil, nil)
		assert.ErrorIs(t, err, booking.ErrBreakdownMismatch)
	})
}

func TestStatusMachine(t *testing.T) {
	tests := []struct {
		name string
		from booking.Status
		to   booking.Status
		ok   bool
	}{
		{name: "active to canceled", from: booking.StatusActive, to: booking.StatusCanceled, ok: true},
		{name: "active to completed", from: booking.StatusActive, to: booking.StatusCompleted, ok: true},
		{name: "active to rescheduled", from: booking.StatusActive, to: booking.StatusRescheduled, ok: true},
		{name: "rescheduled to completed", from: booking.StatusRescheduled, to: booking.StatusCompleted, ok: true},
		{name: "canceled is terminal", from: booking.StatusCanceled, to: booking.StatusActive, ok: false},
		{name: "completed is terminal", from: booking.StatusCompleted, to: booking.StatusCanceled, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}

	t.Run("canceled releases the slot", func(t *testing.T) {
		assert.False(t, booking.StatusCanceled.Occupying())
		assert.True(t, booking.StatusActive.Occupying())
		assert.True(t, booking.StatusRescheduled.Occupying())
	})
}

func TestReschedule(t *testing.T) {
	t.Run("appends history and flips status", func(t *testing.T) {
		b := newTestBooking(t)
		oldDate := b.Schedule().Date()
		newDate := oldDate.AddDate(0, 0, 7)
		now := time.Date(2025, 6, 5, 14, 0, 0, 0, time.UTC)

		require.NoError(t, b.Reschedule(newDate, "client request", now))

		assert.Equal(t, booking.StatusRescheduled, b.Status())
		assert.Equal(t, newDate, b.Schedule().Date())
		require.Len(t, b.RescheduleHistory(), 1)
		entry := b.RescheduleHistory()[0]
		assert.Equal(t, oldDate, entry.OldDate)
		assert.Equal(t, newDate, entry.NewDate)
		assert.Equal(t, "client request", entry.Reason)
	})

	t.Run("second reschedule keeps first entry", func(t *testing.T) {
		b := newTestBooking(t)
		first := b.Schedule().Date().AddDate(0, 0, 3)
		second := b.Schedule().Date().AddDate(0, 0, 10)

		require.NoError(t, b.Reschedule(first, "", time.Now()))
		require.NoError(t, b.Reschedule(second, "", time.Now()))

		assert.Len(t, b.RescheduleHistory(), 2)
	})

	t.Run("rejects same date", func(t *testing.T) {
		b := newTestBooking(t)
		err := b.Reschedule(b.Schedule().Date(), "", time.Now())
		assert.ErrorIs(t, err, booking.ErrSameRescheduleDate)
	})

	t.Run("rejects terminal booking", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.TransitionTo(booking.StatusCanceled))
		err := b.Reschedule(b.Schedule().Date().AddDate(0, 0, 1), "", time.Now())
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})
}

func TestApplyAddonAdjustment(t *testing.T) {
	t.Run("recomputes addons total and total price", func(t *testing.T) {
		b := newTestBooking(t)

		snap, err := booking.NewAddonSnapshot(uuid.New(), "Extra Album", 2, 75000)
		require.NoError(t, err)

		require.NoError(t, b.ApplyAddonAdjustment([]booking.AddonSnapshot{snap}))

		assert.Equal(t, int64(150000), b.Finance().AddonsTotal)
		// 500000 + 150000 - 50000 - 0
		assert.Equal(t, int64(600000), b.Finance().TotalPrice)
	})

	t.Run("clamps adjusted total at zero", func(t *testing.T) {
		b := newTestBooking(t)

		snap, err := booking.NewAddonSnapshot(uuid.New(), "Full Waiver", 1, -600000)
		require.NoError(t, err)

		require.NoError(t, b.ApplyAddonAdjustment([]booking.AddonSnapshot{snap}))
		assert.Equal(t, int64(0), b.Finance().TotalPrice)
	})

	t.Run("rejected for non-active booking", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.TransitionTo(booking.StatusCompleted))

		err := b.ApplyAddonAdjustment(nil)
		assert.ErrorIs(t, err, booking.ErrNotAdjustable)
	})
}

func TestFinanceBalance(t *testing.T) {
	t.Run("balance subtracts payments", func(t *testing.T) {
		b := newTestBooking(t)
		assert.Equal(t, int64(350000), b.Finance().Balance())
		assert.Equal(t, int64(350000), b.Finance().DisplayedBalance())
	})

	t.Run("overpayment goes negative but displays as zero", func(t *testing.T) {
		b := newTestBooking(t)

		extra, err := booking.NewPayment(time.Now(), 400000, "settlement")
		require.NoError(t, err)
		require.NoError(t, b.AddPayment(extra))

		assert.Equal(t, int64(-50000), b.Finance().Balance())
		assert.Equal(t, int64(0), b.Finance().DisplayedBalance())
	})

	t.Run("payments rejected on canceled booking", func(t *testing.T) {
		b := newTestBooking(t)
		require.NoError(t, b.TransitionTo(booking.StatusCanceled))

		p, err := booking.NewPayment(time.Now(), 1000, "")
		require.NoError(t, err)
		assert.ErrorIs(t, b.AddPayment(p), booking.ErrInvalidTransition)
	})
}
