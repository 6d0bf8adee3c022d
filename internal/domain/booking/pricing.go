package booking

import "studio-booking/internal/domain/catalog"

// AddonLine is the minimal addon shape the calculator needs: the frozen
// per-unit price and the quantity. Negative prices are legitimate discount
// addons.
type AddonLine struct {
	Price    int64
	Quantity int64
}

// Breakdown is the full price breakdown. Total is clamped at zero; Clamped
// records that the raw sum was negative so callers can emit an observability
// signal instead of silently hiding a misconfigured discount.
type Breakdown struct {
	ServiceBasePrice int64
	BaseDiscount     int64
	AddonsTotal      int64
	CouponDiscount   int64
	Total            int64
	Clamped          bool
}

// AddonsTotal sums price*quantity over the addon lines.
func AddonsTotal(addons []AddonLine) int64 {
	var total int64
	for _, a := range addons {
		total += a.Price * a.Quantity
	}
	return total
}

// CalculateDetailedPricing is the single source of truth for booking prices,
// shared by the public estimate path and the authoritative server-side
// validation path. It is pure: no I/O, no side effects.
//
// Grand Total = max(0, Service Base + Add-ons - Base Discount - Coupon Discount)
//
// A nil service yields an all-zero breakdown ("no service selected").
func CalculateDetailedPricing(service *catalog.Service, addons []AddonLine, couponDiscount int64) Breakdown {
	if service == nil {
		return Breakdown{}
	}

	serviceBasePrice := service.BasePrice()
	baseDiscount := service.DiscountValue()
	addonsTotal := AddonsTotal(addons)

	total := serviceBasePrice + addonsTotal - baseDiscount - couponDiscount
	clamped := total < 0
	if clamped {
		total = 0
	}

	return Breakdown{
		ServiceBasePrice: serviceBasePrice,
		BaseDiscount:     baseDiscount,
		AddonsTotal:      addonsTotal,
		CouponDiscount:   couponDiscount,
		Total:            total,
		Clamped:          clamped,
	}
}
