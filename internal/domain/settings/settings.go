package settings

import "strconv"

// Setting keys as stored in the settings table.
const (
	KeyMinBookingNotice        = "min_booking_notice"
	KeyMaxBookingAhead         = "max_booking_ahead"
	KeyWhatsAppAdminNumber     = "whatsapp_admin_number"
	KeyWhatsAppMessageTemplate = "whatsapp_message_template"
	KeySiteName                = "site_name"
	KeyBusinessPhone           = "business_phone"
)

// DefaultMessageTemplate is used until an admin customizes the notification.
const DefaultMessageTemplate = "Halo {{customer_name}}! Booking {{service_name}} " +
	"kamu untuk tanggal {{booking_date}} sudah kami terima. " +
	"Total: Rp{{total_price}}. Terima kasih!"

// Settings is the typed view over the key/value settings table. Missing or
// malformed rows fall back to the defaults, never to zero values.
type Settings struct {
	MinBookingNotice        int
	MaxBookingAhead         int
	WhatsAppAdminNumber     string
	WhatsAppMessageTemplate string
	SiteName                string
	BusinessPhone           string
}

func Defaults(minNoticeDays, maxAheadDays int) Settings {
	return Settings{
		MinBookingNotice:        minNoticeDays,
		MaxBookingAhead:         maxAheadDays,
		WhatsAppMessageTemplate: DefaultMessageTemplate,
	}
}

// FromMap overlays stored rows on top of defaults.
func FromMap(defaults Settings, values map[string]string) Settings {
	s := defaults
	if v, ok := parseInt(values[KeyMinBookingNotice]); ok {
		s.MinBookingNotice = v
	}
	if v, ok := parseInt(values[KeyMaxBookingAhead]); ok {
		s.MaxBookingAhead = v
	}
	if v := values[KeyWhatsAppAdminNumber]; v != "" {
		s.WhatsAppAdminNumber = v
	}
	if v := values[KeyWhatsAppMessageTemplate]; v != "" {
		s.WhatsAppMessageTemplate = v
	}
	if v := values[KeySiteName]; v != "" {
		s.SiteName = v
	}
	if v := values[KeyBusinessPhone]; v != "" {
		s.BusinessPhone = v
	}
	return s
}

// ToMap is the inverse of FromMap, used when persisting an update.
func (s Settings) ToMap() map[string]string {
	return map[string]string{
		KeyMinBookingNotice:        strconv.Itoa(s.MinBookingNotice),
		KeyMaxBookingAhead:         strconv.Itoa(s.MaxBookingAhead),
		KeyWhatsAppAdminNumber:     s.WhatsAppAdminNumber,
		KeyWhatsAppMessageTemplate: s.WhatsAppMessageTemplate,
		KeySiteName:                s.SiteName,
		KeyBusinessPhone:           s.BusinessPhone,
	}
}

func parseInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
