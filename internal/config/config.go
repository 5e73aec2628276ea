package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultRequestTimeoutMs = 5000
	DefaultPollIntervalMs   = 500
	MinPollIntervalMs       = 100
	DefaultBrushRadius      = 6
	MaxBrushRadius          = 64
	DefaultHistoryKeepRows  = 10000
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// EngineConfig points at the inspection engine API. An empty base URL keeps
// settings in the local database only and disables status polling.
type EngineConfig struct {
	BaseURL          string `json:"base_url"`
	RequestTimeoutMs int    `json:"request_timeout_ms"`
}

// PollConfig controls the live status refresh.
type PollConfig struct {
	IntervalMs   int  `json:"interval_ms"`
	DiscardStale bool `json:"discard_stale"`
}

// MaskConfig stores exclusion mask editor preferences.
type MaskConfig struct {
	BrushRadius float64 `json:"brush_radius"`
}

// HistoryConfig controls the local status history.
type HistoryConfig struct {
	Enabled  bool `json:"enabled"`
	KeepRows int  `json:"keep_rows"`
}

// UIConfig stores persistent UI preferences.
type UIConfig struct {
	CheckUpdates  bool               `json:"check_updates"`
	Notifications NotificationConfig `json:"notifications"`
}

// NotificationConfig stores desktop notification preferences.
type NotificationConfig struct {
	NotifyWhenFocused bool                     `json:"notify_when_focused"`
	Events            NotificationEventsConfig `json:"events"`
}

// NotificationEventsConfig stores per-event notification toggles.
// Settings save results are always reported.
type NotificationEventsConfig struct {
	EngineConnection bool `json:"engine_connection"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Engine  EngineConfig  `json:"engine"`
	Poll    PollConfig    `json:"poll"`
	Mask    MaskConfig    `json:"mask"`
	History HistoryConfig `json:"history"`
	Logging LoggingConfig `json:"logging"`
	UI      UIConfig      `json:"ui"`
}

func Default() AppConfig {
	return AppConfig{
		Engine: EngineConfig{
			BaseURL:          "",
			RequestTimeoutMs: DefaultRequestTimeoutMs,
		},
		Poll: PollConfig{
			IntervalMs:   DefaultPollIntervalMs,
			DiscardStale: true,
		},
		Mask: MaskConfig{
			BrushRadius: DefaultBrushRadius,
		},
		History: HistoryConfig{
			Enabled:  true,
			KeepRows: DefaultHistoryKeepRows,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		UI: UIConfig{
			CheckUpdates: true,
			Notifications: NotificationConfig{
				NotifyWhenFocused: false,
				Events: NotificationEventsConfig{
					EngineConnection: true,
				},
			},
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	c.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(c.Engine.BaseURL), "/")
	if c.Engine.RequestTimeoutMs <= 0 {
		c.Engine.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if c.Poll.IntervalMs <= 0 {
		c.Poll.IntervalMs = DefaultPollIntervalMs
	}
	if c.Poll.IntervalMs < MinPollIntervalMs {
		c.Poll.IntervalMs = MinPollIntervalMs
	}
	if c.Mask.BrushRadius < 0 {
		c.Mask.BrushRadius = 0
	}
	if c.Mask.BrushRadius > MaxBrushRadius {
		c.Mask.BrushRadius = MaxBrushRadius
	}
	if c.History.KeepRows <= 0 {
		c.History.KeepRows = DefaultHistoryKeepRows
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c AppConfig) Validate() error {
	if c.Engine.BaseURL != "" {
		u, err := url.Parse(c.Engine.BaseURL)
		if err != nil {
			return fmt.Errorf("engine base url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("engine base url must use http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("engine base url host is required")
		}
	}
	if c.Engine.RequestTimeoutMs <= 0 {
		return errors.New("engine request timeout must be positive")
	}
	if c.Poll.IntervalMs < MinPollIntervalMs {
		return fmt.Errorf("poll interval must be at least %d ms", MinPollIntervalMs)
	}
	if c.Mask.BrushRadius < 0 || c.Mask.BrushRadius > MaxBrushRadius {
		return fmt.Errorf("brush radius must be between 0 and %d", MaxBrushRadius)
	}
	if c.History.KeepRows <= 0 {
		return errors.New("history keep rows must be positive")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
