package bootstrap

import (
	"studio-booking/internal/handler/middleware"
	"studio-booking/internal/pkg/config"
	"studio-booking/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
		NewTokenValidator,
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration)
}

func NewTokenValidator(s *jwt.Service) middleware.TokenValidator {
	return s
}
