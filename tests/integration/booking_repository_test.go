//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/infra"
	"studio-booking/internal/infra/repository"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBooking(t *testing.T, serviceID uuid.UUID, at time.Time, addons []booking.AddonSnapshot, payments []booking.Payment) *booking.Booking {
	t.Helper()

	customer, err := booking.NewCustomer("Sari Dewi", "081234567890", "Wedding", serviceID)
	require.NoError(t, err)

	var addonsTotal int64
	for _, a := range addons {
		addonsTotal += a.LineTotal()
	}

	b, err := booking.NewBooking(
		uuid.New(),
		time.Now().UTC(),
		customer,
		booking.NewSchedule(at, "outdoor", ""),
		booking.Breakdown{
			ServiceBasePrice: 500000,
			BaseDiscount:     50000,
			AddonsTotal:      addonsTotal,
			Total:            450000 + addonsTotal,
		},
		nil,
		addons,
		payments,
		nil,
	)
	require.NoError(t, err)
	return b
}

func TestBookingRepositoryCreate_SlotExclusivity(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewBookingRepository(pool)
	ctx := context.Background()

	serviceID := uuid.New()
	seedService(t, pool, serviceID)

	slot := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	first := buildBooking(t, serviceID, slot, nil, nil)
	second := buildBooking(t, serviceID, slot, nil, nil)

	// Both transactions race for the same slot; the partial unique index
	// must let exactly one commit.
	errc := make(chan error, 2)
	for _, b := range []*booking.Booking{first, second} {
		go func(b *booking.Booking) {
			errc <- repo.Create(ctx, b)
		}(b)
	}

	var successes, conflicts int
	for range 2 {
		err := <-errc
		if err == nil {
			successes++
			continue
		}
		require.True(t, infra.IsKind(err, infra.KindConflict), "unexpected error: %v", err)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM bookings WHERE scheduled_at = $1`, slot).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestBookingRepositoryCreate_SameDayDifferentTimes(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewBookingRepository(pool)
	ctx := context.Background()

	serviceID := uuid.New()
	seedService(t, pool, serviceID)

	morning := buildBooking(t, serviceID, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC), nil, nil)
	afternoon := buildBooking(t, serviceID, time.Date(2025, 7, 2, 14, 0, 0, 0, time.UTC), nil, nil)

	require.NoError(t, repo.Create(ctx, morning))
	require.NoError(t, repo.Create(ctx, afternoon))
}

func TestBookingRepositoryCreate_CanceledBookingReleasesSlot(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewBookingRepository(pool)
	ctx := context.Background()

	serviceID := uuid.New()
	seedService(t, pool, serviceID)

	slot := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	existing := buildBooking(t, serviceID, slot, nil, nil)
	require.NoError(t, repo.Create(ctx, existing))
	require.NoError(t, repo.UpdateStatus(ctx, existing.ID(), booking.StatusCanceled))

	replacement := buildBooking(t, serviceID, slot, nil, nil)
	require.NoError(t, repo.Create(ctx, replacement))
}

func TestBookingRepositoryCreate_RoundTrip(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewBookingRepository(pool)
	ctx := context.Background()

	serviceID := uuid.New()
	seedService(t, pool, serviceID)

	addon, err := booking.NewAddonSnapshot(uuid.New(), "Extra Album", 2, 100000)
	require.NoError(t, err)

	payment, err := booking.NewPayment(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), 200000, "DP")
	require.NoError(t, err)
	payment = payment.WithProof("proof.jpg", "/uploads/payment_proofs/proof.jpg", "local")

	b := buildBooking(t, serviceID,
		time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC),
		[]booking.AddonSnapshot{addon},
		[]booking.Payment{payment})
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.FindByID(ctx, b.ID())
	require.NoError(t, err)

	approxTime := cmpopts.EquateApproxTime(time.Second)
	assert.Empty(t, cmp.Diff(b.Addons(), got.Addons()))
	assert.Empty(t, cmp.Diff(b.Finance(), got.Finance(), approxTime))
	assert.Equal(t, b.Status(), got.Status())
	assert.Equal(t, b.Customer(), got.Customer())
}

func TestBookingRepositoryAddPayment_ConcurrentPositions(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewBookingRepository(pool)
	ctx := context.Background()

	serviceID := uuid.New()
	seedService(t, pool, serviceID)

	b := buildBooking(t, serviceID, time.Date(2025, 7, 5, 10, 0, 0, 0, time.UTC), nil, nil)
	require.NoError(t, repo.Create(ctx, b))

	paidAt := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	firstPayment, err := booking.NewPayment(paidAt, 100000, "first installment")
	require.NoError(t, err)
	secondPayment, err := booking.NewPayment(paidAt, 200000, "second installment")
	require.NoError(t, err)

	errc := make(chan error, 2)
	for _, p := range []booking.Payment{firstPayment, secondPayment} {
		go func(p booking.Payment) {
			errc <- repo.AddPayment(ctx, b.ID(), p)
		}(p)
	}
	require.NoError(t, <-errc)
	require.NoError(t, <-errc)

	rows, err := pool.Query(ctx,
		`SELECT position FROM payments WHERE booking_id = $1 ORDER BY position`, b.ID())
	require.NoError(t, err)
	defer rows.Close()

	var positions []int
	for rows.Next() {
		var pos int
		require.NoError(t, rows.Scan(&pos))
		positions = append(positions, pos)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{0, 1}, positions)
}
