package request

import (
	"strings"

	"studio-booking/internal/domain/settings"
)

type UpdateSettingsRequest struct {
	MinBookingNotice        int    `json:"min_booking_notice" binding:"min=0"`
	MaxBookingAhead         int    `json:"max_booking_ahead" binding:"min=0"`
	WhatsAppAdminNumber     string `json:"whatsapp_admin_number"`
	WhatsAppMessageTemplate string `json:"whatsapp_message_template"`
	SiteName                string `json:"site_name"`
	BusinessPhone           string `json:"business_phone"`
}

func (r UpdateSettingsRequest) ToDomain() settings.Settings {
	return settings.Settings{
		MinBookingNotice:        r.MinBookingNotice,
		MaxBookingAhead:         r.MaxBookingAhead,
		WhatsAppAdminNumber:     strings.TrimSpace(r.WhatsAppAdminNumber),
		WhatsAppMessageTemplate: r.WhatsAppMessageTemplate,
		SiteName:                strings.TrimSpace(r.SiteName),
		BusinessPhone:           strings.TrimSpace(r.BusinessPhone),
	}
}
