package components

import (
	"studio-booking/internal/domain/settings"
	"studio-booking/internal/pkg/clock"
	"studio-booking/internal/pkg/config"
	"studio-booking/internal/usecase/commands"
	"studio-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.WhatsAppConfig {
		return cfg.WhatsApp
	},
	// Env-level window rules seed the settings store defaults.
	func(cfg config.Config) settings.Settings {
		return settings.Defaults(cfg.Booking.MinNoticeDays, cfg.Booking.MaxAheadDays)
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingUseCase,
		commands.NewAuthCommands,
		commands.NewSettingsCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewCatalogQueries,
		queries.NewEstimateQueries,
		queries.NewExportQueries,
	),
)
