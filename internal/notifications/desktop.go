package notifications

import (
	"log/slog"
	"strings"

	"github.com/gen2brain/beeep"
)

// DesktopSender shows native desktop notifications without a GUI toolkit.
// It is used by headless tools; the GUI uses the toolkit's own notifications.
type DesktopSender struct {
	appName string
	notify  func(title, message string) error
	alert   func(title, message string) error
	logger  *slog.Logger
}

func NewDesktopSender(appName string, logger *slog.Logger) *DesktopSender {
	if logger == nil {
		logger = slog.Default().With("component", "notifications.desktop")
	}

	return &DesktopSender{
		appName: appName,
		notify:  beeepNotify,
		alert:   beeepAlert,
		logger:  logger,
	}
}

func (s *DesktopSender) Send(payload Payload) {
	if s == nil {
		return
	}
	title := strings.TrimSpace(payload.Title)
	content := strings.TrimSpace(payload.Content)
	if title == "" && content == "" {
		return
	}
	if s.appName != "" {
		title = s.appName + ": " + title
	}

	send := s.notify
	if payload.Level == LevelError && s.alert != nil {
		send = s.alert
	}
	if err := send(title, content); err != nil {
		s.logger.Warn("send desktop notification", "title", title, "error", err)
	}
}

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func beeepAlert(title, message string) error {
	return beeep.Alert(title, message, "")
}
