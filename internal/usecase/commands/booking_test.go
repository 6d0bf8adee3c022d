package commands_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/domain/catalog"
	"studio-booking/internal/domain/coupon"
	"studio-booking/internal/domain/settings"
	"studio-booking/internal/infra"
	"studio-booking/internal/infra/repository"
	"studio-booking/internal/infra/storage"
	"studio-booking/internal/pkg/clock"
	"studio-booking/internal/pkg/config"
	"studio-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type fakeBookingRepo struct {
	byID        map[uuid.UUID]*booking.Booking
	created     *booking.Booking
	createErr   error
	slotTaken   bool
	statusSaved *booking.Status
	adjusted    *booking.Booking
	rescheduled *booking.Booking
	payments    []booking.Payment
	deleted     []uuid.UUID
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[uuid.UUID]*booking.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = b
	f.byID[b.ID()] = b
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return b, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error {
	f.statusSaved = &status
	return nil
}

func (f *fakeBookingRepo) SaveAdjustment(ctx context.Context, b *booking.Booking) error {
	f.adjusted = b
	return nil
}

func (f *fakeBookingRepo) SaveReschedule(ctx context.Context, b *booking.Booking) error {
	f.rescheduled = b
	return nil
}

func (f *fakeBookingRepo) AddPayment(ctx context.Context, bookingID uuid.UUID, p booking.Payment) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBookingRepo) IsSlotTaken(ctx context.Context, at time.Time, excludeID *uuid.UUID) (bool, error) {
	return f.slotTaken, nil
}

type fakeCatalogRepo struct {
	services map[uuid.UUID]*catalog.Service
	addons   map[uuid.UUID]*catalog.Addon
}

func (f *fakeCatalogRepo) FindServiceByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, infra.WrapRepoErr("service not found", nil, infra.KindNotFound)
	}
	return svc, nil
}

func (f *fakeCatalogRepo) FindAddonByID(ctx context.Context, id uuid.UUID) (*catalog.Addon, error) {
	addon, ok := f.addons[id]
	if !ok {
		return nil, infra.WrapRepoErr("addon not found", nil, infra.KindNotFound)
	}
	return addon, nil
}

type fakeCouponRepo struct {
	byCode       map[string]*coupon.Coupon
	incremented  []uuid.UUID
	recorded     []coupon.UsageRecord
	incrementErr error
}

func (f *fakeCouponRepo) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	c, ok := f.byCode[code]
	if !ok {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	return c, nil
}

func (f *fakeCouponRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.incremented = append(f.incremented, id)
	return nil
}

func (f *fakeCouponRepo) RecordUsage(ctx context.Context, rec coupon.UsageRecord) error {
	f.recorded = append(f.recorded, rec)
	return nil
}

type fakeSettingsLoader struct {
	settings settings.Settings
}

func (f *fakeSettingsLoader) Load(ctx context.Context) (settings.Settings, error) {
	return f.settings, nil
}

type fakeIdempotencyRepo struct {
	records   map[uuid.UUID]*repository.IdempotencyRecord
	claimed   bool
	completed map[uuid.UUID]uuid.UUID
	deleted   []uuid.UUID
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{
		records:   make(map[uuid.UUID]*repository.IdempotencyRecord),
		claimed:   true,
		completed: make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeIdempotencyRepo) TryInsert(ctx context.Context, key uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	if _, exists := f.records[key]; exists {
		return false, nil
	}
	return f.claimed, nil
}

func (f *fakeIdempotencyRepo) Get(ctx context.Context, key uuid.UUID) (*repository.IdempotencyRecord, error) {
	rec, ok := f.records[key]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	return rec, nil
}

func (f *fakeIdempotencyRepo) MarkCompleted(ctx context.Context, key uuid.UUID, resultBookingID uuid.UUID) error {
	f.completed[key] = resultBookingID
	return nil
}

func (f *fakeIdempotencyRepo) Delete(ctx context.Context, key uuid.UUID) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeFileStore struct {
	saved []string
	err   error
}

func (f *fakeFileStore) Save(ctx context.Context, r io.Reader, size int64, bookingID uuid.UUID, filename, mimeType string) (storage.SavedFile, error) {
	if f.err != nil {
		return storage.SavedFile{}, f.err
	}
	f.saved = append(f.saved, filename)
	return storage.SavedFile{
		Filename:     filename,
		RelativePath: "payment_proofs/" + filename,
		URL:          "/uploads/payment_proofs/" + filename,
		Backend:      "local",
	}, nil
}

type fixture struct {
	bookingRepo *fakeBookingRepo
	catalogRepo *fakeCatalogRepo
	couponRepo  *fakeCouponRepo
	settings    *fakeSettingsLoader
	idempotency *fakeIdempotencyRepo
	fileStore   *fakeFileStore
	uc          commands.BookingCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	serviceID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	svc, err := catalog.NewService(serviceID, "Prewedding Gold", 500000, 50000, true, nil)
	require.NoError(t, err)

	addonID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	addon, err := catalog.NewAddon(addonID, "Extra Album", 100000, nil, true)
	require.NoError(t, err)

	promo, err := coupon.NewCoupon(uuid.New(), "PROMO10", coupon.TypeFixed, 100000, nil, int64Ptr(200000), nil, true, 0)
	require.NoError(t, err)

	f := &fixture{
		bookingRepo: newFakeBookingRepo(),
		catalogRepo: &fakeCatalogRepo{
			services: map[uuid.UUID]*catalog.Service{serviceID: svc},
			addons:   map[uuid.UUID]*catalog.Addon{addonID: addon},
		},
		couponRepo: &fakeCouponRepo{byCode: map[string]*coupon.Coupon{"PROMO10": promo}},
		settings: &fakeSettingsLoader{settings: settings.Settings{
			MinBookingNotice:        1,
			MaxBookingAhead:         90,
			WhatsAppAdminNumber:     "081234567890",
			WhatsAppMessageTemplate: "Halo {{customer_name}}, total {{total_price}} untuk {{service_name}} pada {{booking_date}}.",
		}},
		idempotency: newFakeIdempotencyRepo(),
		fileStore:   &fakeFileStore{},
	}
	f.uc = commands.NewBookingUseCase(
		f.bookingRepo, f.catalogRepo, f.couponRepo, f.settings, f.idempotency, f.fileStore,
		clock.NewMockClock(testNow),
		config.WhatsAppConfig{DefaultCountryCode: "62"},
	)
	return f
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func validInput() commands.CreateBookingInput {
	return commands.CreateBookingInput{
		CustomerName:     "Sari Dewi",
		CustomerWhatsApp: "081234567890",
		Category:         "Wedding",
		ServiceID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		BookingDate:      testNow.AddDate(0, 0, 7),
		Notes:            "outdoor",
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("persists booking with computed breakdown", func(t *testing.T) {
		f := newFixture(t)
		input := validInput()
		input.Addons = []commands.AddonSelection{
			{AddonID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Quantity: 2},
		}

		result, err := f.uc.CreateBooking(context.Background(), input, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, f.bookingRepo.created)

		fin := result.Booking.Finance()
		assert.Equal(t, int64(500000), fin.ServiceBasePrice)
		assert.Equal(t, int64(50000), fin.BaseDiscount)
		assert.Equal(t, int64(200000), fin.AddonsTotal)
		// 500000 + 200000 - 50000
		assert.Equal(t, int64(650000), fin.TotalPrice)
		assert.False(t, result.IsReplayed)
	})

	t.Run("coupon discount recomputed server-side", func(t *testing.T) {
		f := newFixture(t)
		input := validInput()
		input.CouponCode = strPtr("PROMO10")

		result, err := f.uc.CreateBooking(context.Background(), input, nil, nil)
		require.NoError(t, err)

		// fixed 100000 against subtotal 450000
		assert.Equal(t, int64(100000), result.Booking.Finance().CouponDiscount)
		assert.Equal(t, int64(350000), result.Booking.Finance().TotalPrice)
		require.NotNil(t, result.Booking.Finance().CouponCode)
		assert.Equal(t, "PROMO10", *result.Booking.Finance().CouponCode)

		require.Len(t, f.couponRepo.recorded, 1)
		rec := f.couponRepo.recorded[0]
		assert.Equal(t, result.Booking.ID(), rec.BookingID)
		assert.Equal(t, int64(100000), rec.DiscountAmount)
		// audit rows carry the pre-discount total
		assert.Equal(t, int64(450000), rec.OrderTotal)
		assert.Equal(t, rec.OrderTotal, result.Booking.Finance().TotalPrice+rec.DiscountAmount)
		assert.Len(t, f.couponRepo.incremented, 1)
	})

	t.Run("coupon below min purchase rejected", func(t *testing.T) {
		f := newFixture(t)
		cheapID := uuid.New()
		cheap, err := catalog.NewService(cheapID, "Mini Session", 150000, 0, true, nil)
		require.NoError(t, err)
		f.catalogRepo.services[cheapID] = cheap

		input := validInput()
		input.ServiceID = cheapID
		input.CouponCode = strPtr("PROMO10")

		_, err = f.uc.CreateBooking(context.Background(), input, nil, nil)
		assert.ErrorIs(t, err, commands.ErrCouponRejected)
		assert.Nil(t, f.bookingRepo.created)
	})

	t.Run("unknown service rejected", func(t *testing.T) {
		f := newFixture(t)
		input := validInput()
		input.ServiceID = uuid.New()

		_, err := f.uc.CreateBooking(context.Background(), input, nil, nil)
		assert.ErrorIs(t, err, commands.ErrServiceNotFound)
	})

	t.Run("inactive service rejected", func(t *testing.T) {
		f := newFixture(t)
		inactiveID := uuid.New()
		svc, err := catalog.NewService(inactiveID, "Retired Package", 100000, 0, false, nil)
		require.NoError(t, err)
		f.catalogRepo.services[inactiveID] = svc

		input := validInput()
		input.ServiceID = inactiveID

		_, err = f.uc.CreateBooking(context.Background(), input, nil, nil)
		assert.ErrorIs(t, err, commands.ErrServiceInactive)
	})

	t.Run("min notice enforced from settings", func(t *testing.T) {
		f := newFixture(t)
		f.settings.settings.MinBookingNotice = 2

		input := validInput()
		input.BookingDate = testNow.AddDate(0, 0, 1)

		_, err := f.uc.CreateBooking(context.Background(), input, nil, nil)
		assert.ErrorIs(t, err, commands.ErrMinNoticeViolated)
		assert.Nil(t, f.bookingRepo.created)

		input.BookingDate = testNow.AddDate(0, 0, 3)
		_, err = f.uc.CreateBooking(context.Background(), input, nil, nil)
		assert.NoError(t, err)
	})

	t.Run("max ahead enforced from settings", func(t *testing.T) {
		f := newFixture(t)
		input := validInput()
		input.BookingDate = testNow.AddDate(0, 0, 91)

		_, err := f.uc.CreateBooking(context.Background(), input, nil, nil)
		assert.ErrorIs(t, err, commands.ErrMaxAheadViolated)
	})

	t.Run("advisory slot check rejects taken slot", func(t *testing.T) {
		f := newFixture(t)
		f.bookingRepo.slotTaken = true

		_, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		assert.ErrorIs(t, err, commands.ErrSlotUnavailable)
		assert.Nil(t, f.bookingRepo.created)
	})

	t.Run("persistence conflict maps to slot unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.bookingRepo.createErr = infra.WrapRepoErr("slot taken", nil, infra.KindConflict)

		_, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		assert.ErrorIs(t, err, commands.ErrSlotUnavailable)
	})

	t.Run("oversized proof rejected before any write", func(t *testing.T) {
		f := newFixture(t)
		proof := &commands.UploadedFile{
			Filename: "big.jpg",
			MIMEType: "image/jpeg",
			Size:     6 * 1024 * 1024,
			Content:  strings.NewReader(""),
		}
		input := validInput()
		input.InitialPayment = &commands.PaymentInput{Amount: 100000}

		_, err := f.uc.CreateBooking(context.Background(), input, proof, nil)
		assert.ErrorIs(t, err, commands.ErrFileUploadFailed)
		assert.Empty(t, f.fileStore.saved)
		assert.Nil(t, f.bookingRepo.created)
	})

	t.Run("proof annotates the first payment", func(t *testing.T) {
		f := newFixture(t)
		proof := &commands.UploadedFile{
			Filename: "proof.jpg",
			MIMEType: "image/jpeg",
			Size:     1024,
			Content:  strings.NewReader("bytes"),
		}
		input := validInput()
		input.InitialPayment = &commands.PaymentInput{Amount: 200000, Note: "DP"}

		result, err := f.uc.CreateBooking(context.Background(), input, proof, nil)
		require.NoError(t, err)

		payments := result.Booking.Finance().Payments
		require.Len(t, payments, 1)
		assert.Equal(t, int64(200000), payments[0].Amount)
		require.NotNil(t, payments[0].ProofURL)
		assert.Equal(t, "/uploads/payment_proofs/proof.jpg", *payments[0].ProofURL)
		require.NotNil(t, payments[0].StorageBackend)
		assert.Equal(t, "local", *payments[0].StorageBackend)
	})

	t.Run("whatsapp payload rendered from settings template", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		require.NoError(t, err)

		require.NotNil(t, result.WhatsApp)
		assert.Contains(t, result.WhatsApp.Message, "Sari Dewi")
		assert.Contains(t, result.WhatsApp.Message, "Prewedding Gold")
		assert.Contains(t, result.WhatsApp.Message, "450.000")
		assert.True(t, strings.HasPrefix(result.WhatsApp.AdminLink, "https://wa.me/6281234567890?text="), result.WhatsApp.AdminLink)
	})

	t.Run("coupon side effect failure does not fail the booking", func(t *testing.T) {
		f := newFixture(t)
		f.couponRepo.incrementErr = infra.WrapRepoErr("db down", nil)

		input := validInput()
		input.CouponCode = strPtr("PROMO10")

		result, err := f.uc.CreateBooking(context.Background(), input, nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, result.Booking)
	})
}

func TestCreateBookingIdempotency(t *testing.T) {
	t.Run("completed key replays stored booking", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		require.NoError(t, err)

		key := uuid.New()
		f.idempotency.records[key] = &repository.IdempotencyRecord{
			Key:             key,
			Status:          repository.IdempotencyStatusCompleted,
			RequestHash:     requestHashFor(validInput()),
			ResultBookingID: ptrUUID(first.Booking.ID()),
			ExpiresAt:       testNow.Add(time.Hour),
		}

		result, err := f.uc.CreateBooking(context.Background(), validInput(), nil, &key)
		require.NoError(t, err)
		assert.True(t, result.IsReplayed)
		assert.Equal(t, first.Booking.ID(), result.Booking.ID())
	})

	t.Run("processing key with different payload conflicts", func(t *testing.T) {
		f := newFixture(t)
		key := uuid.New()
		f.idempotency.records[key] = &repository.IdempotencyRecord{
			Key:         key,
			Status:      repository.IdempotencyStatusProcessing,
			RequestHash: "someone-elses-hash",
			ExpiresAt:   testNow.Add(time.Hour),
		}

		_, err := f.uc.CreateBooking(context.Background(), validInput(), nil, &key)
		assert.ErrorIs(t, err, commands.ErrDuplicateRequest)
	})

	t.Run("processing key with same payload reports in progress", func(t *testing.T) {
		f := newFixture(t)
		key := uuid.New()
		f.idempotency.records[key] = &repository.IdempotencyRecord{
			Key:         key,
			Status:      repository.IdempotencyStatusProcessing,
			RequestHash: requestHashFor(validInput()),
			ExpiresAt:   testNow.Add(time.Hour),
		}

		_, err := f.uc.CreateBooking(context.Background(), validInput(), nil, &key)
		assert.ErrorIs(t, err, commands.ErrIdempotencyInProgress)
	})

	t.Run("claimed key marked completed after success", func(t *testing.T) {
		f := newFixture(t)
		key := uuid.New()

		result, err := f.uc.CreateBooking(context.Background(), validInput(), nil, &key)
		require.NoError(t, err)
		assert.Equal(t, result.Booking.ID(), f.idempotency.completed[key])
	})

	t.Run("claimed key released after failure", func(t *testing.T) {
		f := newFixture(t)
		f.bookingRepo.createErr = infra.WrapRepoErr("db down", nil)
		key := uuid.New()

		_, err := f.uc.CreateBooking(context.Background(), validInput(), nil, &key)
		require.Error(t, err)
		assert.Contains(t, f.idempotency.deleted, key)
	})
}

func TestAdjustPrice(t *testing.T) {
	t.Run("recomputes totals with custom price", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		require.NoError(t, err)

		addonID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
		adjusted, err := f.uc.AdjustPrice(context.Background(), created.Booking.ID(), []commands.AdjustmentLine{
			{AddonID: addonID, Quantity: 1, CustomPrice: int64Ptr(75000)},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(75000), adjusted.Finance().AddonsTotal)
		// 500000 + 75000 - 50000
		assert.Equal(t, int64(525000), adjusted.Finance().TotalPrice)
		assert.NotNil(t, f.bookingRepo.adjusted)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.AdjustPrice(context.Background(), uuid.New(), nil)
		assert.ErrorIs(t, err, commands.ErrBookingNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("invalid transition rejected", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		require.NoError(t, err)

		require.NoError(t, f.uc.UpdateStatus(context.Background(), created.Booking.ID(), booking.StatusCompleted))

		err = f.uc.UpdateStatus(context.Background(), created.Booking.ID(), booking.StatusCanceled)
		assert.ErrorIs(t, err, commands.ErrInvalidStatusChange)
	})
}

func TestReschedule(t *testing.T) {
	t.Run("appends history and revalidates window", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		require.NoError(t, err)

		newDate := testNow.AddDate(0, 0, 14)
		updated, err := f.uc.Reschedule(context.Background(), created.Booking.ID(), newDate, "client asked")
		require.NoError(t, err)

		assert.Equal(t, booking.StatusRescheduled, updated.Status())
		require.Len(t, updated.RescheduleHistory(), 1)
		assert.Equal(t, newDate, updated.Schedule().Date())
		assert.NotNil(t, f.bookingRepo.rescheduled)
	})

	t.Run("new date outside window rejected", func(t *testing.T) {
		f := newFixture(t)
		created, err := f.uc.CreateBooking(context.Background(), validInput(), nil, nil)
		require.NoError(t, err)

		_, err = f.uc.Reschedule(context.Background(), created.Booking.ID(), testNow.AddDate(0, 0, 120), "")
		assert.ErrorIs(t, err, commands.ErrMaxAheadViolated)
	})
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

// requestHashFor mirrors the hash the use case computes over the input.
func requestHashFor(input commands.CreateBookingInput) string {
	data, _ := json.Marshal(input)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
