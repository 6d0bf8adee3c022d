package coupon

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountType    = errors.New("invalid discount type")
	ErrInvalidDiscountValue   = errors.New("discount value must be positive")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type DiscountType string

const (
	TypePercentage DiscountType = "percentage"
	TypeFixed      DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	return t == TypePercentage || t == TypeFixed
}

// Discount computes the amount a coupon takes off an order subtotal.
// Percentage discounts are capped at maxDiscount when set; fixed discounts
// never exceed the subtotal.
type Discount struct {
	typ         DiscountType
	value       int64
	maxDiscount *int64
}

func NewDiscount(typ DiscountType, value int64, maxDiscount *int64) (Discount, error) {
	if !typ.IsValid() {
		return Discount{}, ErrInvalidDiscountType
	}
	if value <= 0 {
		return Discount{}, ErrInvalidDiscountValue
	}
	if typ == TypePercentage && value > 100 {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{typ: typ, value: value, maxDiscount: maxDiscount}, nil
}

func (d Discount) Type() DiscountType { return d.typ }
func (d Discount) Value() int64       { return d.value }
func (d Discount) MaxDiscount() *int64 {
	return d.maxDiscount
}

func (d Discount) AmountFor(subtotal int64) int64 {
	switch d.typ {
	case TypePercentage:
		amount := subtotal * d.value / 100
		if d.maxDiscount != nil && amount > *d.maxDiscount {
			amount = *d.maxDiscount
		}
		return amount
	case TypeFixed:
		if d.value > subtotal {
			return subtotal
		}
		return d.value
	default:
		return 0
	}
}
