package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCouponInactive    = errors.New("coupon is not active")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrMinPurchaseNotMet = errors.New("order subtotal below coupon minimum purchase")
)

type Coupon struct {
	id          uuid.UUID
	code        Code
	discount    Discount
	minPurchase *int64
	validUntil  *time.Time
	isActive    bool
	usageCount  int
	createdAt   time.Time
	updatedAt   time.Time
}

func NewCoupon(
	id uuid.UUID,
	code string,
	typ DiscountType,
	value int64,
	maxDiscount, minPurchase *int64,
	validUntil *time.Time,
	isActive bool,
	usageCount int,
) (*Coupon, error) {
	couponCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}

	discount, err := NewDiscount(typ, value, maxDiscount)
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:          id,
		code:        couponCode,
		discount:    discount,
		minPurchase: minPurchase,
		validUntil:  validUntil,
		isActive:    isActive,
		usageCount:  usageCount,
	}, nil
}

// ReconstructCoupon rehydrates a coupon from storage. The code and discount
// still pass through validation so a corrupt row surfaces immediately.
func ReconstructCoupon(
	id uuid.UUID,
	code string,
	typ DiscountType,
	value int64,
	maxDiscount, minPurchase *int64,
	validUntil *time.Time,
	isActive bool,
	usageCount int,
	createdAt, updatedAt time.Time,
) (*Coupon, error) {
	c, err := NewCoupon(id, code, typ, value, maxDiscount, minPurchase, validUntil, isActive, usageCount)
	if err != nil {
		return nil, err
	}
	c.createdAt = createdAt
	c.updatedAt = updatedAt
	return c, nil
}

// DiscountFor validates the coupon against the order subtotal at time now
// and returns the discount amount it grants.
func (c *Coupon) DiscountFor(subtotal int64, now time.Time) (int64, error) {
	if !c.isActive {
		return 0, ErrCouponInactive
	}
	if c.validUntil != nil && now.After(*c.validUntil) {
		return 0, ErrCouponExpired
	}
	if c.minPurchase != nil && subtotal < *c.minPurchase {
		return 0, ErrMinPurchaseNotMet
	}
	return c.discount.AmountFor(subtotal), nil
}

func (c *Coupon) ID() uuid.UUID          { return c.id }
func (c *Coupon) Code() Code             { return c.code }
func (c *Coupon) Discount() Discount     { return c.discount }
func (c *Coupon) MinPurchase() *int64    { return c.minPurchase }
func (c *Coupon) ValidUntil() *time.Time { return c.validUntil }
func (c *Coupon) IsActive() bool         { return c.isActive }
func (c *Coupon) UsageCount() int        { return c.usageCount }
func (c *Coupon) CreatedAt() time.Time   { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time   { return c.updatedAt }

// UsageRecord is one append-only audit row tying a coupon redemption to a
// booking. OrderTotal is the pre-discount total at redemption time.
type UsageRecord struct {
	CouponID         uuid.UUID
	BookingID        uuid.UUID
	CustomerName     string
	CustomerWhatsApp string
	DiscountAmount   int64
	OrderTotal       int64
	UsedAt           time.Time
}
