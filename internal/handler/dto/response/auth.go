package response

import (
	"studio-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type LoginResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
}

func FromLoginResult(result *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		UserID:      result.UserID,
		Email:       result.Email,
		Role:        result.Role,
		AccessToken: result.AccessToken,
	}
}
