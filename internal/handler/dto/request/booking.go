package request

import (
	"strings"
	"time"

	"studio-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type AddonSelectionRequest struct {
	AddonID  uuid.UUID `json:"addon_id" binding:"required"`
	Quantity int64     `json:"quantity" binding:"required,min=1"`
}

type PaymentRequest struct {
	Amount int64  `json:"amount" binding:"min=0"`
	Note   string `json:"note"`
}

type CreateBookingRequest struct {
	CustomerName     string                  `json:"customer_name" binding:"required"`
	CustomerWhatsApp string                  `json:"customer_whatsapp" binding:"required"`
	Category         string                  `json:"category" binding:"required"`
	ServiceID        uuid.UUID               `json:"service_id" binding:"required"`
	BookingDate      time.Time               `json:"booking_date" binding:"required"`
	Notes            string                  `json:"notes"`
	LocationLink     string                  `json:"location_link"`
	Addons           []AddonSelectionRequest `json:"addons"`
	CouponCode       *string                 `json:"coupon_code,omitempty"`
	InitialPayment   *PaymentRequest         `json:"initial_payment,omitempty"`
}

func (r CreateBookingRequest) GetCouponCode() *string {
	if r.CouponCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.CouponCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (r CreateBookingRequest) ToInput() commands.CreateBookingInput {
	addons := make([]commands.AddonSelection, len(r.Addons))
	for i, a := range r.Addons {
		addons[i] = commands.AddonSelection{AddonID: a.AddonID, Quantity: a.Quantity}
	}

	var payment *commands.PaymentInput
	if r.InitialPayment != nil {
		payment = &commands.PaymentInput{
			Amount: r.InitialPayment.Amount,
			Note:   strings.TrimSpace(r.InitialPayment.Note),
		}
	}

	return commands.CreateBookingInput{
		CustomerName:     strings.TrimSpace(r.CustomerName),
		CustomerWhatsApp: strings.TrimSpace(r.CustomerWhatsApp),
		Category:         strings.TrimSpace(r.Category),
		ServiceID:        r.ServiceID,
		BookingDate:      r.BookingDate,
		Notes:            strings.TrimSpace(r.Notes),
		LocationLink:     strings.TrimSpace(r.LocationLink),
		Addons:           addons,
		CouponCode:       r.GetCouponCode(),
		InitialPayment:   payment,
	}
}

// EstimateRequest is the public price-preview payload. It intentionally
// carries no payment or contact fields.
type EstimateRequest struct {
	ServiceID  uuid.UUID               `json:"service_id" binding:"required"`
	Category   string                  `json:"category" binding:"required"`
	Addons     []AddonSelectionRequest `json:"addons"`
	CouponCode *string                 `json:"coupon_code,omitempty"`
}

func (r EstimateRequest) ToInput() commands.CreateBookingInput {
	addons := make([]commands.AddonSelection, len(r.Addons))
	for i, a := range r.Addons {
		addons[i] = commands.AddonSelection{AddonID: a.AddonID, Quantity: a.Quantity}
	}

	var coupon *string
	if r.CouponCode != nil {
		if trimmed := strings.TrimSpace(*r.CouponCode); trimmed != "" {
			coupon = &trimmed
		}
	}

	return commands.CreateBookingInput{
		ServiceID:  r.ServiceID,
		Category:   strings.TrimSpace(r.Category),
		Addons:     addons,
		CouponCode: coupon,
	}
}

type AdjustmentLineRequest struct {
	AddonID     uuid.UUID `json:"addon_id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,min=1"`
	CustomPrice *int64    `json:"custom_price,omitempty"`
}

type AdjustPriceRequest struct {
	Addons []AdjustmentLineRequest `json:"addons" binding:"required"`
}

func (r AdjustPriceRequest) ToLines() []commands.AdjustmentLine {
	lines := make([]commands.AdjustmentLine, len(r.Addons))
	for i, a := range r.Addons {
		lines[i] = commands.AdjustmentLine{AddonID: a.AddonID, Quantity: a.Quantity, CustomPrice: a.CustomPrice}
	}
	return lines
}

type RescheduleRequest struct {
	NewDate time.Time `json:"new_date" binding:"required"`
	Reason  string    `json:"reason"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
