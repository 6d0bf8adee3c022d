package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyServiceName   = errors.New("service name cannot be empty")
	ErrNegativeBasePrice  = errors.New("base price cannot be negative")
	ErrNegativeDiscount   = errors.New("discount value cannot be negative")
	ErrServiceNameTooLong = errors.New("service name is too long (max 255 characters)")
)

const MaxServiceNameLength = 255

// Service is a catalog entry. Created and edited by admin catalog management,
// read-only to the booking flow. discountValue <= basePrice is expected from
// the admin UI but deliberately not enforced here; the pricing calculator
// clamps the total at zero and the orchestrator emits a metric when it does.
type Service struct {
	id            uuid.UUID
	name          string
	basePrice     int64
	discountValue int64
	isActive      bool
	badgeText     *string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewService(id uuid.UUID, name string, basePrice, discountValue int64, isActive bool, badgeText *string) (*Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyServiceName
	}
	if len(name) > MaxServiceNameLength {
		return nil, ErrServiceNameTooLong
	}
	if basePrice < 0 {
		return nil, ErrNegativeBasePrice
	}
	if discountValue < 0 {
		return nil, ErrNegativeDiscount
	}

	return &Service{
		id:            id,
		name:          name,
		basePrice:     basePrice,
		discountValue: discountValue,
		isActive:      isActive,
		badgeText:     badgeText,
	}, nil
}

func ReconstructService(
	id uuid.UUID,
	name string,
	basePrice, discountValue int64,
	isActive bool,
	badgeText *string,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:            id,
		name:          name,
		basePrice:     basePrice,
		discountValue: discountValue,
		isActive:      isActive,
		badgeText:     badgeText,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (s *Service) ID() uuid.UUID        { return s.id }
func (s *Service) Name() string         { return s.name }
func (s *Service) BasePrice() int64     { return s.basePrice }
func (s *Service) DiscountValue() int64 { return s.discountValue }
func (s *Service) IsActive() bool       { return s.isActive }
func (s *Service) BadgeText() *string   { return s.badgeText }
func (s *Service) CreatedAt() time.Time { return s.createdAt }
func (s *Service) UpdatedAt() time.Time { return s.updatedAt }
