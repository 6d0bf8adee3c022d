package bootstrap

import (
	"fmt"

	"studio-booking/internal/infra/storage"
	"studio-booking/internal/pkg/config"
	"studio-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var StorageModule = fx.Module("storage",
	fx.Provide(
		fx.Annotate(
			NewFileStore,
			fx.As(new(commands.FileStore)),
		),
	),
)

func NewFileStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case storage.BackendLocal:
		return storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicURL), nil
	case storage.BackendS3:
		return storage.NewS3Store(cfg.Storage)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
