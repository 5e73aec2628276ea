package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

// settingsEndpoint is implemented by both the engine client and the local repo.
type settingsEndpoint interface {
	LoadSettings(ctx context.Context) (domain.PluginSettings, error)
	SaveSettings(ctx context.Context, settings domain.PluginSettings) error
}

// SettingsBackend persists settings to the engine when one is configured and
// mirrors every accepted save into the local database. Without an engine the
// local database is the only store.
type SettingsBackend struct {
	remote settingsEndpoint
	local  settingsEndpoint
	logger *slog.Logger
}

func NewSettingsBackend(remote, local settingsEndpoint, logger *slog.Logger) *SettingsBackend {
	if logger == nil {
		logger = slog.Default().With("component", "app.settings_backend")
	}

	return &SettingsBackend{remote: remote, local: local, logger: logger}
}

// SaveSettings succeeds only when the authoritative store accepted the
// snapshot. A failed local mirror after an engine save is logged.
func (b *SettingsBackend) SaveSettings(ctx context.Context, settings domain.PluginSettings) error {
	if b.remote == nil {
		if b.local == nil {
			return errors.New("no settings store configured")
		}

		return b.local.SaveSettings(ctx, settings)
	}

	if err := b.remote.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if b.local != nil {
		if err := b.local.SaveSettings(ctx, settings); err != nil {
			b.logger.Warn("mirror settings locally", "error", err)
		}
	}

	return nil
}

// LoadSettings prefers the engine and falls back to the local mirror when the
// engine cannot be reached.
func (b *SettingsBackend) LoadSettings(ctx context.Context) (domain.PluginSettings, error) {
	if b.remote == nil {
		if b.local == nil {
			return domain.DefaultPluginSettings(), nil
		}

		return b.local.LoadSettings(ctx)
	}

	settings, err := b.remote.LoadSettings(ctx)
	if err == nil {
		if b.local != nil {
			if mirrorErr := b.local.SaveSettings(ctx, settings); mirrorErr != nil {
				b.logger.Warn("mirror settings locally", "error", mirrorErr)
			}
		}

		return settings, nil
	}
	if b.local == nil {
		return domain.PluginSettings{}, fmt.Errorf("engine: %w", err)
	}

	b.logger.Warn("load settings from engine, using local mirror", "error", err)
	settings, localErr := b.local.LoadSettings(ctx)
	if localErr != nil {
		return domain.PluginSettings{}, errors.Join(fmt.Errorf("engine: %w", err), fmt.Errorf("local: %w", localErr))
	}

	return settings, nil
}
