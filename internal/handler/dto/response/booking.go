package response

import (
	"studio-booking/internal/usecase/commands"
	"studio-booking/internal/usecase/readmodel"
)

type WhatsAppResponse struct {
	Message   string `json:"message"`
	AdminLink string `json:"admin_link,omitempty"`
}

type CreateBookingResponse struct {
	Booking  *readmodel.BookingView `json:"booking"`
	WhatsApp *WhatsAppResponse      `json:"whatsapp,omitempty"`
	Replayed bool                   `json:"replayed"`
}

func FromCreateResult(result *commands.CreateBookingResult) *CreateBookingResponse {
	resp := &CreateBookingResponse{
		Booking:  readmodel.BookingViewFromEntity(result.Booking),
		Replayed: result.IsReplayed,
	}
	if result.WhatsApp != nil {
		resp.WhatsApp = &WhatsAppResponse{
			Message:   result.WhatsApp.Message,
			AdminLink: result.WhatsApp.AdminLink,
		}
	}
	return resp
}
