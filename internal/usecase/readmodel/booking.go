package readmodel

import (
	"time"

	"studio-booking/internal/domain/booking"

	"github.com/google/uuid"
)

type PaymentView struct {
	Date           time.Time `json:"date"`
	Amount         int64     `json:"amount"`
	Note           string    `json:"note"`
	ProofFilename  *string   `json:"proof_filename,omitempty"`
	ProofURL       *string   `json:"proof_url,omitempty"`
	StorageBackend *string   `json:"storage_backend,omitempty"`
}

type AddonView struct {
	AddonID        uuid.UUID `json:"addon_id"`
	AddonName      string    `json:"addon_name"`
	Quantity       int64     `json:"quantity"`
	PriceAtBooking int64     `json:"price_at_booking"`
	LineTotal      int64     `json:"line_total"`
}

type RescheduleView struct {
	OldDate time.Time `json:"old_date"`
	NewDate time.Time `json:"new_date"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

// BookingView is the flattened read shape for API responses and exports.
// Balance is the displayed balance, clamped at zero.
type BookingView struct {
	ID                uuid.UUID        `json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	Status            string           `json:"status"`
	CustomerName      string           `json:"customer_name"`
	CustomerWhatsApp  string           `json:"customer_whatsapp"`
	Category          string           `json:"category"`
	ServiceID         uuid.UUID        `json:"service_id"`
	BookingDate       time.Time        `json:"booking_date"`
	Notes             string           `json:"notes"`
	LocationLink      string           `json:"location_link"`
	TotalPrice        int64            `json:"total_price"`
	ServiceBasePrice  int64            `json:"service_base_price"`
	BaseDiscount      int64            `json:"base_discount"`
	AddonsTotal       int64            `json:"addons_total"`
	CouponDiscount    int64            `json:"coupon_discount"`
	CouponCode        *string          `json:"coupon_code,omitempty"`
	AmountPaid        int64            `json:"amount_paid"`
	Balance           int64            `json:"balance"`
	Addons            []AddonView      `json:"addons"`
	Payments          []PaymentView    `json:"payments"`
	RescheduleHistory []RescheduleView `json:"reschedule_history"`
}

func BookingViewFromEntity(b *booking.Booking) *BookingView {
	f := b.Finance()

	addons := make([]AddonView, len(b.Addons()))
	for i, a := range b.Addons() {
		addons[i] = AddonView{
			AddonID:        a.AddonID,
			AddonName:      a.AddonName,
			Quantity:       a.Quantity,
			PriceAtBooking: a.PriceAtBooking,
			LineTotal:      a.LineTotal(),
		}
	}

	payments := make([]PaymentView, len(f.Payments))
	for i, p := range f.Payments {
		payments[i] = PaymentView{
			Date:           p.Date,
			Amount:         p.Amount,
			Note:           p.Note,
			ProofFilename:  p.ProofFilename,
			ProofURL:       p.ProofURL,
			StorageBackend: p.StorageBackend,
		}
	}

	history := make([]RescheduleView, len(b.RescheduleHistory()))
	for i, e := range b.RescheduleHistory() {
		history[i] = RescheduleView{OldDate: e.OldDate, NewDate: e.NewDate, Reason: e.Reason, At: e.At}
	}

	return &BookingView{
		ID:                b.ID(),
		CreatedAt:         b.CreatedAt(),
		Status:            string(b.Status()),
		CustomerName:      b.Customer().Name(),
		CustomerWhatsApp:  b.Customer().WhatsApp(),
		Category:          b.Customer().Category(),
		ServiceID:         b.Customer().ServiceID(),
		BookingDate:       b.Schedule().Date(),
		Notes:             b.Schedule().Notes(),
		LocationLink:      b.Schedule().LocationLink(),
		TotalPrice:        f.TotalPrice,
		ServiceBasePrice:  f.ServiceBasePrice,
		BaseDiscount:      f.BaseDiscount,
		AddonsTotal:       f.AddonsTotal,
		CouponDiscount:    f.CouponDiscount,
		CouponCode:        f.CouponCode,
		AmountPaid:        f.Paid(),
		Balance:           f.DisplayedBalance(),
		Addons:            addons,
		Payments:          payments,
		RescheduleHistory: history,
	}
}
