package queries

import (
	"context"
	"errors"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/domain/coupon"
	"studio-booking/internal/infra"
	"studio-booking/internal/pkg/clock"
	"studio-booking/internal/pkg/errs"
	"studio-booking/internal/usecase/commands"
)

// Coupon rejection reasons as exposed by the public estimate endpoint.
const (
	CouponReasonNotFound    = "COUPON_NOT_FOUND"
	CouponReasonInactive    = "COUPON_INACTIVE"
	CouponReasonExpired     = "COUPON_EXPIRED"
	CouponReasonMinPurchase = "COUPON_MIN_PURCHASE_NOT_MET"
)

type EstimateView struct {
	ServiceBasePrice int64   `json:"service_base_price"`
	BaseDiscount     int64   `json:"base_discount"`
	AddonsTotal      int64   `json:"addons_total"`
	CouponDiscount   int64   `json:"coupon_discount"`
	Total            int64   `json:"total"`
	CouponApplied    bool    `json:"coupon_applied"`
	CouponReason     *string `json:"coupon_reason,omitempty"`
}

type EstimateQueries interface {
	Estimate(ctx context.Context, input commands.CreateBookingInput) (*EstimateView, error)
}

type estimateQueriesImpl struct {
	catalogRepo commands.CatalogRepository
	couponRepo  commands.CouponRepository
	clock       clock.Clock
}

func NewEstimateQueries(catalogRepo commands.CatalogRepository, couponRepo commands.CouponRepository, clk clock.Clock) EstimateQueries {
	return &estimateQueriesImpl{catalogRepo: catalogRepo, couponRepo: couponRepo, clock: clk}
}

// Estimate previews the price breakdown without touching booking state. An
// invalid coupon does not fail the preview; it is reported in the view so the
// client can show why the discount did not apply.
func (q *estimateQueriesImpl) Estimate(ctx context.Context, input commands.CreateBookingInput) (*EstimateView, error) {
	svc, err := q.catalogRepo.FindServiceByID(ctx, input.ServiceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, commands.ErrServiceNotFound
		}
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}
	if !svc.IsActive() {
		return nil, commands.ErrServiceInactive
	}

	lines := make([]booking.AddonLine, 0, len(input.Addons))
	for _, sel := range input.Addons {
		addon, err := q.catalogRepo.FindAddonByID(ctx, sel.AddonID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, commands.ErrAddonNotFound
			}
			return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
		}
		if !addon.IsActive() {
			return nil, commands.ErrAddonInactive
		}
		if !addon.AppliesTo(input.Category) {
			return nil, commands.ErrAddonNotApplicable
		}
		lines = append(lines, booking.AddonLine{Price: addon.Price(), Quantity: sel.Quantity})
	}

	subtotal := svc.BasePrice() + booking.AddonsTotal(lines) - svc.DiscountValue()
	if subtotal < 0 {
		subtotal = 0
	}

	var (
		couponDiscount int64
		couponApplied  bool
		couponReason   *string
	)
	if input.CouponCode != nil && *input.CouponCode != "" {
		couponDiscount, couponApplied, couponReason = q.previewCoupon(ctx, *input.CouponCode, subtotal)
	}

	breakdown := booking.CalculateDetailedPricing(svc, lines, couponDiscount)
	return &EstimateView{
		ServiceBasePrice: breakdown.ServiceBasePrice,
		BaseDiscount:     breakdown.BaseDiscount,
		AddonsTotal:      breakdown.AddonsTotal,
		CouponDiscount:   breakdown.CouponDiscount,
		Total:            breakdown.Total,
		CouponApplied:    couponApplied,
		CouponReason:     couponReason,
	}, nil
}

func (q *estimateQueriesImpl) previewCoupon(ctx context.Context, code string, subtotal int64) (int64, bool, *string) {
	c, err := q.couponRepo.FindByCode(ctx, code)
	if err != nil {
		reason := CouponReasonNotFound
		return 0, false, &reason
	}

	discount, err := c.DiscountFor(subtotal, q.clock.Now())
	if err != nil {
		reason := couponReason(err)
		return 0, false, &reason
	}
	return discount, true, nil
}

func couponReason(err error) string {
	switch {
	case errors.Is(err, coupon.ErrCouponInactive):
		return CouponReasonInactive
	case errors.Is(err, coupon.ErrCouponExpired):
		return CouponReasonExpired
	case errors.Is(err, coupon.ErrMinPurchaseNotMet):
		return CouponReasonMinPurchase
	default:
		return CouponReasonNotFound
	}
}
