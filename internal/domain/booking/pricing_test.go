package booking_test

import (
	"testing"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustService(t *testing.T, basePrice, discountValue int64) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(uuid.New(), "Prewedding Gold", basePrice, discountValue, true, nil)
	require.NoError(t, err)
	return svc
}

func TestCalculateDetailedPricing(t *testing.T) {
	tests := []struct {
		name           string
		basePrice      int64
		baseDiscount   int64
		addons         []booking.AddonLine
		couponDiscount int64
		wantTotal      int64
		wantClamped    bool
	}{
		{
			name:      "base price only",
			basePrice: 500000,
			wantTotal: 500000,
		},
		{
			name:         "base discount applied",
			basePrice:    500000,
			baseDiscount: 50000,
			wantTotal:    450000,
		},
		{
			name:      "addons summed with quantity",
			basePrice: 500000,
			addons: []booking.AddonLine{
				{Price: 100000, Quantity: 2},
				{Price: 25000, Quantity: 1},
			},
			wantTotal: 725000,
		},
		{
			name:      "negative addon acts as discount",
			basePrice: 500000,
			addons: []booking.AddonLine{
				{Price: -75000, Quantity: 1},
			},
			wantTotal: 425000,
		},
		{
			name:           "coupon discount subtracted",
			basePrice:      500000,
			couponDiscount: 100000,
			wantTotal:      400000,
		},
		{
			name:           "total clamped at zero when discounts exceed gross",
			basePrice:      100000,
			baseDiscount:   80000,
			couponDiscount: 50000,
			wantTotal:      0,
			wantClamped:    true,
		},
		{
			name:           "exactly zero is not clamped",
			basePrice:      100000,
			couponDiscount: 100000,
			wantTotal:      0,
			wantClamped:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mustService(t, tt.basePrice, tt.baseDiscount)

			got := booking.CalculateDetailedPricing(svc, tt.addons, tt.couponDiscount)

			assert.Equal(t, tt.basePrice, got.ServiceBasePrice)
			assert.Equal(t, tt.baseDiscount, got.BaseDiscount)
			assert.Equal(t, booking.AddonsTotal(tt.addons), got.AddonsTotal)
			assert.Equal(t, tt.couponDiscount, got.CouponDiscount)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantClamped, got.Clamped)
		})
	}

	t.Run("nil service yields zero breakdown", func(t *testing.T) {
		got := booking.CalculateDetailedPricing(nil, []booking.AddonLine{{Price: 1000, Quantity: 1}}, 500)
		assert.Equal(t, booking.Breakdown{}, got)
	})

	t.Run("breakdown identity holds", func(t *testing.T) {
		svc := mustService(t, 750000, 100000)
		addons := []booking.AddonLine{{Price: 50000, Quantity: 3}, {Price: -20000, Quantity: 1}}

		got := booking.CalculateDetailedPricing(svc, addons, 30000)

		raw := got.ServiceBasePrice + got.AddonsTotal - got.BaseDiscount - got.CouponDiscount
		if raw < 0 {
			raw = 0
		}
		assert.Equal(t, raw, got.Total)
	})
}
