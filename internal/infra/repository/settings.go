package repository

import (
	"context"

	"studio-booking/internal/domain/settings"
	"studio-booking/internal/infra"
	"studio-booking/internal/infra/db"
	"studio-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	pool     *pgxpool.Pool
	defaults settings.Settings
}

func NewSettingsRepository(pool *pgxpool.Pool, defaults settings.Settings) *SettingsRepository {
	return &SettingsRepository{pool: pool, defaults: defaults}
}

// Load reads all settings rows and overlays them on the configured defaults.
func (r *SettingsRepository) Load(ctx context.Context) (settings.Settings, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings.Settings{}, infra.WrapRepoErr("failed to load settings", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings.Settings{}, infra.WrapRepoErr("failed to scan settings row", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return settings.Settings{}, infra.WrapRepoErr("failed to iterate settings rows", err)
	}

	return settings.FromMap(r.defaults, values), nil
}

// Update upserts every key and writes one audit row per changed value.
func (r *SettingsRepository) Update(ctx context.Context, s settings.Settings, changedBy *uuid.UUID) error {
	err := db.RunInTx(ctx, r.pool, func(ctx context.Context, tx db.DBTX) error {
		for key, value := range s.ToMap() {
			var old *string
			row := tx.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key)
			var current string
			if err := row.Scan(&current); err == nil {
				old = &current
			} else if !pgconv.IsNoRows(err) {
				return err
			}

			if old != nil && *old == value {
				continue
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
				key, value)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO settings_audit (key, old_value, new_value, changed_by, changed_at)
				VALUES ($1, $2, $3, $4, now())`,
				key, pgconv.StringPtrToPgtype(old), value, pgconv.UUIDPtrToPgtype(changedBy))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return infra.WrapRepoErr("failed to update settings", err)
	}
	return nil
}
