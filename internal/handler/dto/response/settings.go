package response

import (
	"studio-booking/internal/domain/settings"
)

type SettingsResponse struct {
	MinBookingNotice        int    `json:"min_booking_notice"`
	MaxBookingAhead         int    `json:"max_booking_ahead"`
	WhatsAppAdminNumber     string `json:"whatsapp_admin_number"`
	WhatsAppMessageTemplate string `json:"whatsapp_message_template"`
	SiteName                string `json:"site_name"`
	BusinessPhone           string `json:"business_phone"`
}

func FromSettings(s settings.Settings) *SettingsResponse {
	return &SettingsResponse{
		MinBookingNotice:        s.MinBookingNotice,
		MaxBookingAhead:         s.MaxBookingAhead,
		WhatsAppAdminNumber:     s.WhatsAppAdminNumber,
		WhatsAppMessageTemplate: s.WhatsAppMessageTemplate,
		SiteName:                s.SiteName,
		BusinessPhone:           s.BusinessPhone,
	}
}
