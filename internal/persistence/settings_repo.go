package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
)

// SettingsRepo keeps the plugin settings as one row per named field.
type SettingsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db, now: time.Now}
}

// SaveSettings replaces every field row in a single transaction.
func (r *SettingsRepo) SaveSettings(ctx context.Context, settings domain.PluginSettings) error {
	values, err := settingsToRows(settings)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save settings tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updatedAt := timeToUnixMillis(r.now())
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings(key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, key, string(values[key]), updatedAt); err != nil {
			return fmt.Errorf("upsert setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save settings tx: %w", err)
	}

	return nil
}

// LoadSettings returns the stored settings. Fields without a row keep their
// defaults, so an empty database yields DefaultPluginSettings.
func (r *SettingsRepo) LoadSettings(ctx context.Context) (domain.PluginSettings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return domain.PluginSettings{}, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.PluginSettings{}, fmt.Errorf("scan setting: %w", err)
		}
		values[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return domain.PluginSettings{}, fmt.Errorf("iterate settings: %w", err)
	}

	settings := domain.DefaultPluginSettings()
	if len(values) == 0 {
		return settings, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return domain.PluginSettings{}, fmt.Errorf("assemble settings: %w", err)
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.PluginSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	if settings.MaskData == "" {
		settings.MaskData = mask.EmptyString()
	}

	return settings, nil
}

// HasSettings reports whether any settings have been stored yet.
func (r *SettingsRepo) HasSettings(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&count); err != nil {
		return false, fmt.Errorf("count settings: %w", err)
	}

	return count > 0, nil
}

func settingsToRows(settings domain.PluginSettings) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("split settings: %w", err)
	}

	return values, nil
}
