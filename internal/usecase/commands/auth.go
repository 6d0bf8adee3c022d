package commands

import (
	"context"
	"log/slog"

	"studio-booking/internal/pkg/clock"
	"studio-booking/internal/pkg/errs"
	"studio-booking/internal/pkg/jwt"
	"studio-booking/internal/pkg/password"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errs.New("invalid credentials")
	ErrUserInactive       = errs.New("user inactive")
	ErrTokenGeneration    = errs.New("token generation failed")
)

type LoginResult struct {
	UserID      uuid.UUID
	Email       string
	Role        string
	AccessToken string
}

type AuthCommands interface {
	Login(ctx context.Context, email, plainPassword string) (*LoginResult, error)
}

type authCommandsImpl struct {
	userRepo   UserRepository
	jwtService *jwt.Service
	clock      clock.Clock
}

func NewAuthCommands(userRepo UserRepository, jwtService *jwt.Service, clk clock.Clock) AuthCommands {
	return &authCommandsImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		clock:      clk,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, email, plainPassword string) (*LoginResult, error) {
	u, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Same error as a password mismatch to prevent user enumeration.
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive() {
		return nil, ErrUserInactive
	}

	if err := password.Compare(u.PasswordHash(), plainPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(u.ID(), u.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	// Best-effort: login already succeeded.
	if err := a.userRepo.UpdateLastLogin(ctx, u.ID(), a.clock.Now()); err != nil {
		slog.Warn("failed to update last login", "user_id", u.ID().String(), "error", err.Error())
	}

	return &LoginResult{
		UserID:      u.ID(),
		Email:       u.Email(),
		Role:        u.Role().String(),
		AccessToken: token,
	}, nil
}
