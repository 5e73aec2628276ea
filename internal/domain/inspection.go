package domain

import (
	"time"

	"github.com/nozzlewatch/nozzlewatch/internal/mask"
)

// Action selects what the inspection engine does when the failure count is reached.
type Action int

const (
	ActionNotify Action = iota
	ActionPause
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionNotify:
		return "notify"
	case ActionPause:
		return "pause"
	case ActionStop:
		return "stop"
	default:
		return "unknown"
	}
}

// PluginSettings is the unit persisted and retrieved by the settings backend.
// JSON names follow the engine settings API.
type PluginSettings struct {
	EnableAI             bool    `json:"enableAI"`
	Action               Action  `json:"action"`
	PrintLayoutThreshold float64 `json:"printLayoutThreshold"`
	ImgSensitivity       float64 `json:"imgSensitivity"`
	ScoresThreshold      float64 `json:"scoresThreshold"`
	MaxCount             int     `json:"maxCount"`
	CountTime            int     `json:"countTime"`
	MaxNotification      int     `json:"maxNotification"`
	AIStartDelay         int     `json:"aiStartDelay"`
	CPUSpeedControl      float64 `json:"cpuSpeedControl"`
	EnableNotification   bool    `json:"enableNotification"`
	CustomSnapshotURL    string  `json:"customSnapshotURL"`
	TelegramBotToken     string  `json:"telegramBotToken"`
	TelegramChatID       string  `json:"telegramChatID"`
	DiscordWebhookURL    string  `json:"discordWebhookURL"`
	MaskData             string  `json:"maskData"`
}

// DefaultPluginSettings returns the engine's factory settings with an empty mask.
func DefaultPluginSettings() PluginSettings {
	return PluginSettings{
		EnableAI:             true,
		Action:               ActionNotify,
		PrintLayoutThreshold: 0.5,
		ImgSensitivity:       0.08,
		ScoresThreshold:      0.7,
		MaxCount:             2,
		CountTime:            300,
		MaxNotification:      5,
		AIStartDelay:         0,
		CPUSpeedControl:      1,
		EnableNotification:   true,
		MaskData:             mask.EmptyString(),
	}
}

// StatusSnapshot is the display-only state refreshed by the status poller.
type StatusSnapshot struct {
	Image          string
	FailureCount   int
	AIStatus       string
	CPUTemperature float64
	ReceivedAt     time.Time
}

// SettingsSaveFailed is published when a settings save is rejected by the backend.
type SettingsSaveFailed struct {
	Settings PluginSettings
	Err      string
}
