package components

import (
	"studio-booking/internal/infra/cache"
	"studio-booking/internal/infra/repository"
	"studio-booking/internal/pkg/config"
	"studio-booking/internal/usecase/commands"
	"studio-booking/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		fx.Annotate(
			repository.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
			fx.As(new(queries.BookingReader)),
		),
		fx.Annotate(
			repository.NewCatalogRepository,
			fx.As(new(commands.CatalogRepository)),
			fx.As(new(queries.CatalogReader)),
		),
		fx.Annotate(
			repository.NewCouponRepository,
			fx.As(new(commands.CouponRepository)),
		),
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(commands.UserRepository)),
		),
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
		fx.Annotate(
			repository.NewSettingsRepository,
			fx.As(new(commands.SettingsRepository)),
			fx.As(new(cache.SettingsLoader)),
		),
		// The read-through cache fronts every settings read; updates go to the
		// repository and invalidate the cache.
		fx.Annotate(
			NewSettingsCache,
			fx.As(new(commands.SettingsLoader)),
			fx.As(new(commands.SettingsInvalidator)),
		),
	),
)

func NewSettingsCache(loader cache.SettingsLoader, client *redis.Client, cfg config.Config) *cache.SettingsCache {
	return cache.NewSettingsCache(loader, client, cfg.Redis.SettingsTTL)
}
