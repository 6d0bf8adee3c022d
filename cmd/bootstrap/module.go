package bootstrap

import (
	"studio-booking/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	RedisModule,
	JWTModule,
	StorageModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
