package commands

import (
	"context"

	"studio-booking/internal/domain/settings"
	"studio-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInvalidSettings = errs.New("invalid settings")

type SettingsInvalidator interface {
	Invalidate(ctx context.Context)
}

type SettingsCommands interface {
	Get(ctx context.Context) (settings.Settings, error)
	Update(ctx context.Context, s settings.Settings, changedBy uuid.UUID) error
}

type settingsCommandsImpl struct {
	repo        SettingsRepository
	invalidator SettingsInvalidator
}

func NewSettingsCommands(repo SettingsRepository, invalidator SettingsInvalidator) SettingsCommands {
	return &settingsCommandsImpl{repo: repo, invalidator: invalidator}
}

func (c *settingsCommandsImpl) Get(ctx context.Context) (settings.Settings, error) {
	s, err := c.repo.Load(ctx)
	if err != nil {
		return settings.Settings{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return s, nil
}

func (c *settingsCommandsImpl) Update(ctx context.Context, s settings.Settings, changedBy uuid.UUID) error {
	if s.MinBookingNotice < 0 || s.MaxBookingAhead < s.MinBookingNotice {
		return ErrInvalidSettings
	}

	if err := c.repo.Update(ctx, s, &changedBy); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if c.invalidator != nil {
		c.invalidator.Invalidate(ctx)
	}
	return nil
}
