package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/domain/catalog"
	"studio-booking/internal/domain/coupon"
	"studio-booking/internal/infra"
	"studio-booking/internal/infra/repository"
	"studio-booking/internal/infra/storage"
	"studio-booking/internal/metrics"
	"studio-booking/internal/pkg/clock"
	"studio-booking/internal/pkg/config"
	"studio-booking/internal/pkg/errs"
	"studio-booking/internal/pkg/whatsapp"

	"github.com/google/uuid"
)

var (
	ErrServiceNotFound         = errs.New("service not found")
	ErrServiceInactive         = errs.New("service is not active")
	ErrMinNoticeViolated       = errs.New("booking date violates minimum notice")
	ErrMaxAheadViolated        = errs.New("booking date exceeds maximum ahead window")
	ErrSlotUnavailable         = errs.New("booking slot unavailable")
	ErrCouponNotFound          = errs.New("coupon not found")
	ErrCouponRejected          = errs.New("coupon rejected")
	ErrAddonNotFound           = errs.New("addon not found")
	ErrAddonInactive           = errs.New("addon is not active")
	ErrAddonNotApplicable      = errs.New("addon not applicable to category")
	ErrFileUploadFailed        = errs.New("file upload failed")
	ErrBookingNotFound         = errs.New("booking not found")
	ErrInvalidStatusChange     = errs.New("invalid status change")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrDuplicateRequest        = errs.New("idempotency key reused with different request")
	ErrIdempotencyInProgress   = errs.New("request with this idempotency key is in progress")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

const idempotencyKeyTTL = 24 * time.Hour

type AddonSelection struct {
	AddonID  uuid.UUID `json:"addon_id"`
	Quantity int64     `json:"quantity"`
}

type PaymentInput struct {
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

type CreateBookingInput struct {
	CustomerName     string           `json:"customer_name"`
	CustomerWhatsApp string           `json:"customer_whatsapp"`
	Category         string           `json:"category"`
	ServiceID        uuid.UUID        `json:"service_id"`
	BookingDate      time.Time        `json:"booking_date"`
	Notes            string           `json:"notes"`
	LocationLink     string           `json:"location_link"`
	Addons           []AddonSelection `json:"addons"`
	CouponCode       *string          `json:"coupon_code"`
	InitialPayment   *PaymentInput    `json:"initial_payment"`
}

// UploadedFile carries a multipart upload into the use case without tying it
// to the HTTP layer.
type UploadedFile struct {
	Filename string
	MIMEType string
	Size     int64
	Content  io.Reader
}

type WhatsAppPayload struct {
	Message   string
	AdminLink string
}

type CreateBookingResult struct {
	Booking    *booking.Booking
	WhatsApp   *WhatsAppPayload
	IsReplayed bool
}

// AdjustmentLine is one admin price-adjustment entry. CustomPrice overrides
// the catalog price for this booking only.
type AdjustmentLine struct {
	AddonID     uuid.UUID `json:"addon_id"`
	Quantity    int64     `json:"quantity"`
	CustomPrice *int64    `json:"custom_price"`
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, input CreateBookingInput, proof *UploadedFile, idempotencyKey *uuid.UUID) (*CreateBookingResult, error)
	AdjustPrice(ctx context.Context, bookingID uuid.UUID, lines []AdjustmentLine) (*booking.Booking, error)
	Reschedule(ctx context.Context, bookingID uuid.UUID, newDate time.Time, reason string) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status booking.Status) error
	AddPayment(ctx context.Context, bookingID uuid.UUID, input PaymentInput, proof *UploadedFile) error
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error
}

type bookingUseCaseImpl struct {
	bookingRepo     BookingRepository
	catalogRepo     CatalogRepository
	couponRepo      CouponRepository
	settingsLoader  SettingsLoader
	idempotencyRepo IdempotencyRepository
	fileStore       FileStore
	clock           clock.Clock
	whatsappCfg     config.WhatsAppConfig
}

func NewBookingUseCase(
	bookingRepo BookingRepository,
	catalogRepo CatalogRepository,
	couponRepo CouponRepository,
	settingsLoader SettingsLoader,
	idempotencyRepo IdempotencyRepository,
	fileStore FileStore,
	clk clock.Clock,
	whatsappCfg config.WhatsAppConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		bookingRepo:     bookingRepo,
		catalogRepo:     catalogRepo,
		couponRepo:      couponRepo,
		settingsLoader:  settingsLoader,
		idempotencyRepo: idempotencyRepo,
		fileStore:       fileStore,
		clock:           clk,
		whatsappCfg:     whatsappCfg,
	}
}

func (u *bookingUseCaseImpl) CreateBooking(
	ctx context.Context,
	input CreateBookingInput,
	proof *UploadedFile,
	idempotencyKey *uuid.UUID,
) (*CreateBookingResult, error) {
	if idempotencyKey == nil {
		return u.createNewBooking(ctx, input, proof)
	}

	replay, err := u.handleIdempotency(ctx, *idempotencyKey, input)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	result, err := u.createNewBooking(ctx, input, proof)
	if err != nil {
		// Release the claim so the client can retry with the same key.
		if delErr := u.idempotencyRepo.Delete(ctx, *idempotencyKey); delErr != nil {
			slog.Warn("failed to release idempotency key", "error", delErr.Error())
		}
		return nil, err
	}

	if err := u.idempotencyRepo.MarkCompleted(ctx, *idempotencyKey, result.Booking.ID()); err != nil {
		slog.Error("failed to mark idempotency key completed", "error", err.Error())
		metrics.IncSideEffectFailure("idempotency_complete")
	}
	return result, nil
}

func (u *bookingUseCaseImpl) handleIdempotency(ctx context.Context, key uuid.UUID, input CreateBookingInput) (*CreateBookingResult, error) {
	requestHash := calculateRequestHash(input)
	expiresAt := u.clock.Now().Add(idempotencyKeyTTL)

	claimed, err := u.idempotencyRepo.TryInsert(ctx, key, requestHash, expiresAt)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if claimed {
		return nil, nil
	}

	existing, err := u.idempotencyRepo.Get(ctx, key)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// The previous holder released the key between insert and read.
			return nil, ErrIdempotencyInProgress
		}
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	if existing.RequestHash != requestHash {
		return nil, ErrDuplicateRequest
	}

	switch existing.Status {
	case repository.IdempotencyStatusCompleted:
		if existing.ResultBookingID == nil {
			return nil, errs.New("completed idempotency key missing result booking ID")
		}
		b, err := u.bookingRepo.FindByID(ctx, *existing.ResultBookingID)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return &CreateBookingResult{Booking: b, IsReplayed: true}, nil

	case repository.IdempotencyStatusProcessing:
		return nil, ErrIdempotencyInProgress

	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (u *bookingUseCaseImpl) createNewBooking(ctx context.Context, input CreateBookingInput, proof *UploadedFile) (*CreateBookingResult, error) {
	now := u.clock.Now()

	svc, err := u.resolveService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}

	snapshots, addonLines, err := u.resolveAddons(ctx, input.Addons, input.Category)
	if err != nil {
		return nil, err
	}

	// The coupon is always re-validated server-side; the submitted discount
	// amount is never trusted.
	subtotal := breakdownSubtotal(svc, addonLines)
	couponEntity, couponDiscount, err := u.resolveCoupon(ctx, input.CouponCode, subtotal, now)
	if err != nil {
		return nil, err
	}

	breakdown := booking.CalculateDetailedPricing(svc, addonLines, couponDiscount)
	if breakdown.Clamped {
		metrics.IncClampedTotal()
		slog.Warn("booking total clamped to zero",
			"service_id", svc.ID().String(),
			"coupon_discount", couponDiscount)
	}

	if err := u.validateSchedule(ctx, now, input.BookingDate, nil); err != nil {
		return nil, err
	}

	bookingID := uuid.New()

	payments, err := u.buildInitialPayments(ctx, bookingID, input.InitialPayment, proof, now)
	if err != nil {
		return nil, err
	}

	customer, err := booking.NewCustomer(input.CustomerName, input.CustomerWhatsApp, input.Category, input.ServiceID)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	var couponCode *string
	if couponEntity != nil {
		code := couponEntity.Code().String()
		couponCode = &code
	}

	b, err := booking.NewBooking(
		bookingID,
		now,
		customer,
		booking.NewSchedule(input.BookingDate, input.Notes, input.LocationLink),
		breakdown,
		couponCode,
		snapshots,
		payments,
		nil,
	)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	// Point of no return.
	if err := u.bookingRepo.Create(ctx, b); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			metrics.IncRuleViolation("SLOT_UNAVAILABLE")
			return nil, ErrSlotUnavailable
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	metrics.IncBookingCreated()

	result := &CreateBookingResult{Booking: b}
	u.runPostCommit(ctx, result, b, svc, couponEntity, couponDiscount, now)
	return result, nil
}

// runPostCommit executes the best-effort side effects. Each step is isolated:
// a failure is logged and counted, the booking stands either way.
func (u *bookingUseCaseImpl) runPostCommit(
	ctx context.Context,
	result *CreateBookingResult,
	b *booking.Booking,
	svc *catalog.Service,
	couponEntity *coupon.Coupon,
	couponDiscount int64,
	now time.Time,
) {
	if couponEntity != nil {
		if err := u.couponRepo.IncrementUsage(ctx, couponEntity.ID()); err != nil {
			slog.Error("failed to increment coupon usage", "coupon_id", couponEntity.ID().String(), "error", err.Error())
			metrics.IncSideEffectFailure("coupon_increment")
		}
		if err := u.couponRepo.RecordUsage(ctx, coupon.UsageRecord{
			CouponID:         couponEntity.ID(),
			BookingID:        b.ID(),
			CustomerName:     b.Customer().Name(),
			CustomerWhatsApp: b.Customer().WhatsApp(),
			DiscountAmount:   couponDiscount,
			OrderTotal:       b.Finance().TotalPrice + couponDiscount,
			UsedAt:           now,
		}); err != nil {
			slog.Error("failed to record coupon usage", "coupon_id", couponEntity.ID().String(), "error", err.Error())
			metrics.IncSideEffectFailure("coupon_record")
		}
	}

	payload, err := u.buildWhatsAppPayload(ctx, b, svc)
	if err != nil {
		slog.Error("failed to build whatsapp payload", "booking_id", b.ID().String(), "error", err.Error())
		metrics.IncSideEffectFailure("whatsapp")
		return
	}
	result.WhatsApp = payload
}

func (u *bookingUseCaseImpl) buildWhatsAppPayload(ctx context.Context, b *booking.Booking, svc *catalog.Service) (*WhatsAppPayload, error) {
	s, err := u.settingsLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	message := whatsapp.RenderTemplate(s.WhatsAppMessageTemplate, map[string]string{
		"customer_name": b.Customer().Name(),
		"service_name":  svc.Name(),
		"category":      b.Customer().Category(),
		"booking_date":  b.Schedule().Date().Format("02 January 2006"),
		"total_price":   formatPrice(b.Finance().TotalPrice),
		"site_name":     s.SiteName,
	})

	payload := &WhatsAppPayload{Message: message}
	if s.WhatsAppAdminNumber != "" {
		payload.AdminLink = whatsapp.Link(s.WhatsAppAdminNumber, u.whatsappCfg.DefaultCountryCode, message)
	}
	return payload, nil
}

func (u *bookingUseCaseImpl) AdjustPrice(ctx context.Context, bookingID uuid.UUID, lines []AdjustmentLine) (*booking.Booking, error) {
	b, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]booking.AddonSnapshot, 0, len(lines))
	for _, line := range lines {
		addon, err := u.catalogRepo.FindAddonByID(ctx, line.AddonID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, ErrAddonNotFound
			}
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		price := addon.Price()
		if line.CustomPrice != nil {
			price = *line.CustomPrice
		}
		snap, err := booking.NewAddonSnapshot(addon.ID(), addon.Name(), line.Quantity, price)
		if err != nil {
			return nil, errs.Mark(err, ErrDomainValidation)
		}
		snapshots = append(snapshots, snap)
	}

	if err := b.ApplyAddonAdjustment(snapshots); err != nil {
		return nil, errs.Mark(err, ErrInvalidStatusChange)
	}

	if err := u.bookingRepo.SaveAdjustment(ctx, b); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return b, nil
}

func (u *bookingUseCaseImpl) Reschedule(ctx context.Context, bookingID uuid.UUID, newDate time.Time, reason string) (*booking.Booking, error) {
	b, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	id := b.ID()
	if err := u.validateSchedule(ctx, now, newDate, &id); err != nil {
		return nil, err
	}

	if err := b.Reschedule(newDate, reason, now); err != nil {
		return nil, errs.Mark(err, ErrInvalidStatusChange)
	}

	if err := u.bookingRepo.SaveReschedule(ctx, b); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			metrics.IncRuleViolation("SLOT_UNAVAILABLE")
			return nil, ErrSlotUnavailable
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return b, nil
}

func (u *bookingUseCaseImpl) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status booking.Status) error {
	b, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := b.TransitionTo(status); err != nil {
		return errs.Mark(err, ErrInvalidStatusChange)
	}

	if err := u.bookingRepo.UpdateStatus(ctx, bookingID, status); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			// Reactivating into an occupied slot.
			return ErrSlotUnavailable
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (u *bookingUseCaseImpl) AddPayment(ctx context.Context, bookingID uuid.UUID, input PaymentInput, proof *UploadedFile) error {
	b, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	now := u.clock.Now()
	payment, err := booking.NewPayment(now, input.Amount, input.Note)
	if err != nil {
		return errs.Mark(err, ErrDomainValidation)
	}

	if proof != nil {
		saved, err := u.storeProof(ctx, bookingID, proof)
		if err != nil {
			return err
		}
		payment = payment.WithProof(saved.Filename, saved.URL, saved.Backend)
	}

	if err := b.AddPayment(payment); err != nil {
		return errs.Mark(err, ErrInvalidStatusChange)
	}

	if err := u.bookingRepo.AddPayment(ctx, bookingID, payment); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (u *bookingUseCaseImpl) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	if err := u.bookingRepo.Delete(ctx, bookingID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrBookingNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (u *bookingUseCaseImpl) findBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := u.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return b, nil
}

func (u *bookingUseCaseImpl) resolveService(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, err := u.catalogRepo.FindServiceByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			metrics.IncRuleViolation("INVALID_SERVICE")
			return nil, ErrServiceNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !svc.IsActive() {
		metrics.IncRuleViolation("SERVICE_INACTIVE")
		return nil, ErrServiceInactive
	}
	return svc, nil
}

func (u *bookingUseCaseImpl) resolveAddons(ctx context.Context, selections []AddonSelection, category string) ([]booking.AddonSnapshot, []booking.AddonLine, error) {
	snapshots := make([]booking.AddonSnapshot, 0, len(selections))
	lines := make([]booking.AddonLine, 0, len(selections))

	for _, sel := range selections {
		addon, err := u.catalogRepo.FindAddonByID(ctx, sel.AddonID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, nil, ErrAddonNotFound
			}
			return nil, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !addon.IsActive() {
			return nil, nil, ErrAddonInactive
		}
		if !addon.AppliesTo(category) {
			return nil, nil, ErrAddonNotApplicable
		}

		snap, err := booking.NewAddonSnapshot(addon.ID(), addon.Name(), sel.Quantity, addon.Price())
		if err != nil {
			return nil, nil, errs.Mark(err, ErrDomainValidation)
		}
		snapshots = append(snapshots, snap)
		lines = append(lines, booking.AddonLine{Price: addon.Price(), Quantity: sel.Quantity})
	}
	return snapshots, lines, nil
}

func (u *bookingUseCaseImpl) resolveCoupon(ctx context.Context, code *string, subtotal int64, now time.Time) (*coupon.Coupon, int64, error) {
	if code == nil || *code == "" {
		return nil, 0, nil
	}

	c, err := u.couponRepo.FindByCode(ctx, *code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, 0, ErrCouponNotFound
		}
		return nil, 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	discount, err := c.DiscountFor(subtotal, now)
	if err != nil {
		return nil, 0, errs.Mark(err, ErrCouponRejected)
	}
	return c, discount, nil
}

// validateSchedule applies the booking window from live settings and the
// advisory slot check. The partial unique index remains the final authority
// on slot exclusivity.
func (u *bookingUseCaseImpl) validateSchedule(ctx context.Context, now, date time.Time, excludeID *uuid.UUID) error {
	s, err := u.settingsLoader.Load(ctx)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	window := booking.Window{MinNoticeDays: s.MinBookingNotice, MaxAheadDays: s.MaxBookingAhead}
	if _, err := window.Validate(now, date); err != nil {
		switch {
		case errors.Is(err, booking.ErrMinNoticeViolated):
			metrics.IncRuleViolation("MIN_BOOKING_NOTICE_VIOLATED")
			return errs.Mark(err, ErrMinNoticeViolated)
		case errors.Is(err, booking.ErrMaxAheadViolated):
			metrics.IncRuleViolation("MAX_BOOKING_AHEAD_VIOLATED")
			return errs.Mark(err, ErrMaxAheadViolated)
		default:
			return errs.Mark(err, ErrDomainValidation)
		}
	}

	taken, err := u.bookingRepo.IsSlotTaken(ctx, date, excludeID)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if taken {
		metrics.IncRuleViolation("SLOT_UNAVAILABLE")
		return ErrSlotUnavailable
	}
	return nil
}

func (u *bookingUseCaseImpl) buildInitialPayments(ctx context.Context, bookingID uuid.UUID, input *PaymentInput, proof *UploadedFile, now time.Time) ([]booking.Payment, error) {
	if input == nil {
		if proof == nil {
			return nil, nil
		}
		// A proof without an amount still records a zero down payment row.
		input = &PaymentInput{}
	}

	payment, err := booking.NewPayment(now, input.Amount, input.Note)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	if proof != nil {
		saved, err := u.storeProof(ctx, bookingID, proof)
		if err != nil {
			return nil, err
		}
		payment = payment.WithProof(saved.Filename, saved.URL, saved.Backend)
	}
	return []booking.Payment{payment}, nil
}

func (u *bookingUseCaseImpl) storeProof(ctx context.Context, bookingID uuid.UUID, proof *UploadedFile) (storage.SavedFile, error) {
	if err := storage.ValidateFile(proof.Filename, proof.MIMEType, proof.Size); err != nil {
		metrics.IncRuleViolation("FILE_UPLOAD_FAILED")
		return storage.SavedFile{}, errs.Mark(err, ErrFileUploadFailed)
	}

	saved, err := u.fileStore.Save(ctx, proof.Content, proof.Size, bookingID, proof.Filename, proof.MIMEType)
	if err != nil {
		metrics.IncRuleViolation("FILE_UPLOAD_FAILED")
		return storage.SavedFile{}, errs.Mark(err, ErrFileUploadFailed)
	}
	return saved, nil
}

func breakdownSubtotal(svc *catalog.Service, addons []booking.AddonLine) int64 {
	subtotal := svc.BasePrice() + booking.AddonsTotal(addons) - svc.DiscountValue()
	if subtotal < 0 {
		return 0
	}
	return subtotal
}

// formatPrice renders an amount with Indonesian thousand separators.
func formatPrice(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func calculateRequestHash(input CreateBookingInput) string {
	data, _ := json.Marshal(input)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
