package commands

import (
	"context"
	"io"
	"time"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/domain/catalog"
	"studio-booking/internal/domain/coupon"
	"studio-booking/internal/domain/settings"
	"studio-booking/internal/domain/user"
	"studio-booking/internal/infra/repository"
	"studio-booking/internal/infra/storage"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error
	SaveAdjustment(ctx context.Context, b *booking.Booking) error
	SaveReschedule(ctx context.Context, b *booking.Booking) error
	AddPayment(ctx context.Context, bookingID uuid.UUID, p booking.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsSlotTaken(ctx context.Context, at time.Time, excludeID *uuid.UUID) (bool, error)
}

type CatalogRepository interface {
	FindServiceByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error)
	FindAddonByID(ctx context.Context, id uuid.UUID) (*catalog.Addon, error)
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	RecordUsage(ctx context.Context, rec coupon.UsageRecord) error
}

type SettingsLoader interface {
	Load(ctx context.Context) (settings.Settings, error)
}

type SettingsRepository interface {
	Load(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, s settings.Settings, changedBy *uuid.UUID) error
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key uuid.UUID, requestHash string, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, key uuid.UUID) (*repository.IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, key uuid.UUID, resultBookingID uuid.UUID) error
	Delete(ctx context.Context, key uuid.UUID) error
}

type FileStore interface {
	Save(ctx context.Context, r io.Reader, size int64, bookingID uuid.UUID, filename, mimeType string) (storage.SavedFile, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
