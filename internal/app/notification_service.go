package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/config"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
)

const (
	notificationTitleEngineLost     = "Inspection engine unreachable"
	notificationTitleEngineRestored = "Inspection engine reachable again"
)

// NotificationService listens to bus events and emits user-facing notifications.
// Settings save results are reported by the settings store itself.
type NotificationService struct {
	bus           bus.MessageBus
	currentConfig func() config.AppConfig
	isForeground  func() bool
	sender        notifications.Sender
	logger        *slog.Logger

	connStatusMu     sync.Mutex
	lastConnState    connectors.ConnectionState
	lastConnStateSet bool
}

func NewNotificationService(
	messageBus bus.MessageBus,
	currentConfig func() config.AppConfig,
	isForeground func() bool,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:           messageBus,
		currentConfig: currentConfig,
		isForeground:  isForeground,
		sender:        sender,
		logger:        logger,
	}
}

func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	connSub := s.bus.Subscribe(connectors.TopicConnStatus)

	go func() {
		defer s.bus.Unsubscribe(connSub, connectors.TopicConnStatus)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-connSub:
				if !ok {
					return
				}
				status, ok := raw.(connectors.ConnectionStatus)
				if !ok {
					continue
				}
				s.handleConnectionStatus(status)
			}
		}
	}()
}

// handleConnectionStatus reports losing the engine and getting it back. The
// first successful poll after startup is not announced.
func (s *NotificationService) handleConnectionStatus(status connectors.ConnectionStatus) {
	if status.State != connectors.ConnectionStateConnected &&
		status.State != connectors.ConnectionStateDisconnected {
		return
	}

	s.connStatusMu.Lock()
	previous, known := s.lastConnState, s.lastConnStateSet
	if known && previous == status.State {
		s.connStatusMu.Unlock()

		return
	}
	s.lastConnState = status.State
	s.lastConnStateSet = true
	s.connStatusMu.Unlock()

	if status.State == connectors.ConnectionStateConnected && !known {
		return
	}

	prefs := s.notificationPrefs()
	if !s.shouldNotify(prefs, prefs.Events.EngineConnection) {
		return
	}

	details := strings.TrimSpace(status.Target)
	if details == "" {
		details = "No engine address"
	}
	title := notificationTitleEngineRestored
	level := notifications.LevelInfo
	if status.State == connectors.ConnectionStateDisconnected {
		title = notificationTitleEngineLost
		level = notifications.LevelError
		if errText := strings.TrimSpace(status.Err); errText != "" {
			details = fmt.Sprintf("%s (error: %s)", details, errText)
		}
	}

	s.send(notifications.Payload{Title: title, Content: details, Level: level})
}

func (s *NotificationService) shouldNotify(prefs config.NotificationConfig, kindEnabled bool) bool {
	if !kindEnabled {
		return false
	}
	if prefs.NotifyWhenFocused {
		return true
	}
	if s.isForeground == nil {
		return true
	}

	return !s.isForeground()
}

func (s *NotificationService) notificationPrefs() config.NotificationConfig {
	cfg := config.Default()
	if s.currentConfig != nil {
		cfg = s.currentConfig()
		cfg.FillMissingDefaults()
	}

	return cfg.UI.Notifications
}

func (s *NotificationService) send(notification notifications.Payload) {
	title := strings.TrimSpace(notification.Title)
	content := strings.TrimSpace(notification.Content)
	if title == "" && content == "" {
		return
	}
	s.logger.Debug("sending notification", "title", title)
	s.sender.Send(notifications.Payload{
		Title:   title,
		Content: content,
		Level:   notification.Level,
	})
}
