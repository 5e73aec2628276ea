package settings

import (
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

const (
	FieldEnableAI             FieldID = "enableAI"
	FieldAction               FieldID = "action"
	FieldPrintLayoutThreshold FieldID = "printLayoutThreshold"
	FieldImgSensitivity       FieldID = "imgSensitivity"
	FieldScoresThreshold      FieldID = "scoresThreshold"
	FieldMaxCount             FieldID = "maxCount"
	FieldCountTime            FieldID = "countTime"
	FieldMaxNotification      FieldID = "maxNotification"
	FieldAIStartDelay         FieldID = "aiStartDelay"
	FieldCPUSpeedControl      FieldID = "cpuSpeedControl"
	FieldEnableNotification   FieldID = "enableNotification"
	FieldCustomSnapshotURL    FieldID = "customSnapshotURL"
	FieldTelegramBotToken     FieldID = "telegramBotToken"
	FieldTelegramChatID       FieldID = "telegramChatID"
	FieldDiscordWebhookURL    FieldID = "discordWebhookURL"
	FieldMaskData             FieldID = "maskData"
)

var actionOptions = []string{
	domain.ActionNotify.String(),
	domain.ActionPause.String(),
	domain.ActionStop.String(),
}

// newFieldTable builds the fields in form order. The mask field is returned
// separately as well so the store can expose it without a type switch.
func newFieldTable() ([]stagedField, *Field[string]) {
	maskField := newField(
		Descriptor{ID: FieldMaskData, Label: "Exclusion Mask", Kind: KindMask},
		func(s *domain.PluginSettings) *string { return &s.MaskData },
		MaskString(),
	)

	fields := []stagedField{
		newField(
			Descriptor{ID: FieldEnableAI, Label: "Enable AI", Kind: KindBool, Allowed: "true or false"},
			func(s *domain.PluginSettings) *bool { return &s.EnableAI },
			Bool(),
		),
		newField(
			Descriptor{ID: FieldAction, Label: "Action", Kind: KindChoice, Allowed: "notify, pause or stop", Options: actionOptions},
			func(s *domain.PluginSettings) *domain.Action { return &s.Action },
			ActionChoice(),
		),
		newField(
			Descriptor{ID: FieldPrintLayoutThreshold, Label: "Boxes Display Threshold", Kind: KindFloat, Allowed: "0 - 1"},
			func(s *domain.PluginSettings) *float64 { return &s.PrintLayoutThreshold },
			FloatRange(0, 1),
		),
		newField(
			Descriptor{ID: FieldImgSensitivity, Label: "Image Sensitivity", Kind: KindFloat, Allowed: "0 - 1"},
			func(s *domain.PluginSettings) *float64 { return &s.ImgSensitivity },
			FloatRange(0, 1),
		),
		newField(
			Descriptor{ID: FieldScoresThreshold, Label: "Failure Scores Threshold", Kind: KindFloat, Allowed: "0 - 1"},
			func(s *domain.PluginSettings) *float64 { return &s.ScoresThreshold },
			FloatRange(0, 1),
		),
		newField(
			Descriptor{ID: FieldMaxCount, Label: "Max Failure Count", Kind: KindInt, Allowed: "1 - 100"},
			func(s *domain.PluginSettings) *int { return &s.MaxCount },
			IntRange(1, 100),
		),
		newField(
			Descriptor{ID: FieldCountTime, Label: "Failure Consider Time (s)", Kind: KindInt, Allowed: "1 - 60000"},
			func(s *domain.PluginSettings) *int { return &s.CountTime },
			IntRange(1, 60000),
		),
		newField(
			Descriptor{ID: FieldMaxNotification, Label: "Max Notification Count", Kind: KindInt, Allowed: "0 - 60000"},
			func(s *domain.PluginSettings) *int { return &s.MaxNotification },
			IntRange(0, 60000),
		),
		newField(
			Descriptor{ID: FieldAIStartDelay, Label: "AI Start Delay (s)", Kind: KindInt, Allowed: "0 - 60000"},
			func(s *domain.PluginSettings) *int { return &s.AIStartDelay },
			IntRange(0, 60000),
		),
		newField(
			Descriptor{ID: FieldCPUSpeedControl, Label: "CPU Speed Control", Kind: KindFloat, Allowed: "above 0, up to 1"},
			func(s *domain.PluginSettings) *float64 { return &s.CPUSpeedControl },
			FloatAbove(0, 1),
		),
		newField(
			Descriptor{ID: FieldEnableNotification, Label: "Enable Notifications", Kind: KindBool, Allowed: "true or false"},
			func(s *domain.PluginSettings) *bool { return &s.EnableNotification },
			Bool(),
		),
		newField(
			Descriptor{ID: FieldCustomSnapshotURL, Label: "Custom Snapshot URL", Kind: KindText},
			func(s *domain.PluginSettings) *string { return &s.CustomSnapshotURL },
			Opaque(),
		),
		newField(
			Descriptor{ID: FieldTelegramBotToken, Label: "Telegram Bot Token", Kind: KindSecret},
			func(s *domain.PluginSettings) *string { return &s.TelegramBotToken },
			Opaque(),
		),
		newField(
			Descriptor{ID: FieldTelegramChatID, Label: "Telegram Chat ID", Kind: KindText},
			func(s *domain.PluginSettings) *string { return &s.TelegramChatID },
			Opaque(),
		),
		newField(
			Descriptor{ID: FieldDiscordWebhookURL, Label: "Discord Webhook URL", Kind: KindSecret},
			func(s *domain.PluginSettings) *string { return &s.DiscordWebhookURL },
			Opaque(),
		),
		maskField,
	}

	return fields, maskField
}
