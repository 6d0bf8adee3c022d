package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCustomerName = errors.New("customer name cannot be empty")
	ErrEmptyWhatsApp     = errors.New("customer whatsapp number cannot be empty")
	ErrInvalidQuantity   = errors.New("addon quantity must be positive")
	ErrNegativePayment   = errors.New("payment amount cannot be negative")
)

type Customer struct {
	name      string
	whatsApp  string
	category  string
	serviceID uuid.UUID
}

func NewCustomer(name, whatsApp, category string, serviceID uuid.UUID) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Customer{}, ErrEmptyCustomerName
	}
	whatsApp = strings.TrimSpace(whatsApp)
	if whatsApp == "" {
		return Customer{}, ErrEmptyWhatsApp
	}
	return Customer{
		name:      name,
		whatsApp:  whatsApp,
		category:  strings.TrimSpace(category),
		serviceID: serviceID,
	}, nil
}

func (c Customer) Name() string         { return c.name }
func (c Customer) WhatsApp() string     { return c.whatsApp }
func (c Customer) Category() string     { return c.category }
func (c Customer) ServiceID() uuid.UUID { return c.serviceID }

type Schedule struct {
	date         time.Time
	notes        string
	locationLink string
}

func NewSchedule(date time.Time, notes, locationLink string) Schedule {
	return Schedule{
		date:         date,
		notes:        strings.TrimSpace(notes),
		locationLink: strings.TrimSpace(locationLink),
	}
}

func (s Schedule) Date() time.Time      { return s.date }
func (s Schedule) Notes() string        { return s.notes }
func (s Schedule) LocationLink() string { return s.locationLink }

// AddonSnapshot freezes an addon line at booking time. PriceAtBooking is
// immune to later catalog price changes; it may be negative for discount
// addons, and quantity times price contributes to addons_total.
type AddonSnapshot struct {
	AddonID        uuid.UUID
	AddonName      string
	Quantity       int64
	PriceAtBooking int64
}

func NewAddonSnapshot(addonID uuid.UUID, name string, quantity, priceAtBooking int64) (AddonSnapshot, error) {
	if quantity <= 0 {
		return AddonSnapshot{}, ErrInvalidQuantity
	}
	return AddonSnapshot{
		AddonID:        addonID,
		AddonName:      name,
		Quantity:       quantity,
		PriceAtBooking: priceAtBooking,
	}, nil
}

func (a AddonSnapshot) LineTotal() int64 {
	return a.PriceAtBooking * a.Quantity
}

// Payment is one payment row owned by the booking. Proof fields are set when
// a payment-proof upload accompanied the payment.
type Payment struct {
	Date           time.Time
	Amount         int64
	Note           string
	ProofFilename  *string
	ProofURL       *string
	StorageBackend *string
}

func NewPayment(date time.Time, amount int64, note string) (Payment, error) {
	if amount < 0 {
		return Payment{}, ErrNegativePayment
	}
	return Payment{Date: date, Amount: amount, Note: strings.TrimSpace(note)}, nil
}

func (p Payment) WithProof(filename, url, backend string) Payment {
	p.ProofFilename = &filename
	p.ProofURL = &url
	p.StorageBackend = &backend
	return p
}

// RescheduleEntry is one append-only reschedule history row.
type RescheduleEntry struct {
	OldDate time.Time
	NewDate time.Time
	Reason  string
	At      time.Time
}

// Finance is the price breakdown persisted with the booking. The invariant
// TotalPrice == max(0, ServiceBasePrice + AddonsTotal - BaseDiscount - CouponDiscount)
// holds at creation time and is re-established by price adjustments.
type Finance struct {
	TotalPrice       int64
	ServiceBasePrice int64
	BaseDiscount     int64
	AddonsTotal      int64
	CouponDiscount   int64
	CouponCode       *string
	Payments         []Payment
}

// Paid is the sum of all recorded payment amounts.
func (f Finance) Paid() int64 {
	var sum int64
	for _, p := range f.Payments {
		sum += p.Amount
	}
	return sum
}

// Balance may go negative on overpayment; the stored value is kept as-is.
func (f Finance) Balance() int64 {
	return f.TotalPrice - f.Paid()
}

// DisplayedBalance clamps the balance at zero for reporting.
func (f Finance) DisplayedBalance() int64 {
	if b := f.Balance(); b > 0 {
		return b
	}
	return 0
}
