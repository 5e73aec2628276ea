package ui

import (
	"fmt"
	"sync"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

// uiEventHandlers are invoked from listener goroutines, never on the UI thread.
type uiEventHandlers struct {
	OnConnStatus         func(connectors.ConnectionStatus)
	OnStatusSnapshot     func(domain.StatusSnapshot)
	OnSettingsCommitted  func()
	OnSettingsSaveFailed func(domain.SettingsSaveFailed)
	OnUpdateSnapshot     func(nzapp.UpdateSnapshot)
}

func startUIEventListeners(messageBus bus.MessageBus, handlers uiEventHandlers) func() {
	if messageBus == nil {
		appLogger.Debug("skipping UI event listeners: message bus is nil")

		return func() {}
	}

	done := make(chan struct{})
	var stopOnce sync.Once
	var unsubscribe []func()

	subscribe := func(topic string, handle func(raw any)) {
		sub := messageBus.Subscribe(topic)
		unsubscribe = append(unsubscribe, func() { messageBus.Unsubscribe(sub, topic) })
		go listenTopic(topic, sub, done, handle)
	}

	subscribe(connectors.TopicConnStatus, func(raw any) {
		status, ok := raw.(connectors.ConnectionStatus)
		if !ok {
			logUnexpectedPayload(connectors.TopicConnStatus, raw)

			return
		}
		if handlers.OnConnStatus != nil {
			handlers.OnConnStatus(status)
		}
	})
	subscribe(connectors.TopicStatusSnapshot, func(raw any) {
		snapshot, ok := raw.(domain.StatusSnapshot)
		if !ok {
			logUnexpectedPayload(connectors.TopicStatusSnapshot, raw)

			return
		}
		if handlers.OnStatusSnapshot != nil {
			handlers.OnStatusSnapshot(snapshot)
		}
	})
	subscribe(connectors.TopicSettingsCommitted, func(_ any) {
		if handlers.OnSettingsCommitted != nil {
			handlers.OnSettingsCommitted()
		}
	})
	subscribe(connectors.TopicSettingsSaveFail, func(raw any) {
		failed, ok := raw.(domain.SettingsSaveFailed)
		if !ok {
			logUnexpectedPayload(connectors.TopicSettingsSaveFail, raw)

			return
		}
		if handlers.OnSettingsSaveFailed != nil {
			handlers.OnSettingsSaveFailed(failed)
		}
	})
	subscribe(connectors.TopicUpdateSnapshot, func(raw any) {
		snapshot, ok := raw.(nzapp.UpdateSnapshot)
		if !ok {
			logUnexpectedPayload(connectors.TopicUpdateSnapshot, raw)

			return
		}
		if handlers.OnUpdateSnapshot != nil {
			handlers.OnUpdateSnapshot(snapshot)
		}
	})
	appLogger.Debug(
		"subscribed to UI bus topics",
		"topics", []string{
			connectors.TopicConnStatus,
			connectors.TopicStatusSnapshot,
			connectors.TopicSettingsCommitted,
			connectors.TopicSettingsSaveFail,
			connectors.TopicUpdateSnapshot,
		},
	)

	return func() {
		stopOnce.Do(func() {
			appLogger.Debug("stopping UI event listeners")
			close(done)
			for _, fn := range unsubscribe {
				fn()
			}
		})
	}
}

func listenTopic(topic string, sub bus.Subscription, done <-chan struct{}, handle func(raw any)) {
	for {
		select {
		case <-done:
			return
		case raw, ok := <-sub:
			if !ok {
				appLogger.Debug("UI subscription closed", "topic", topic)

				return
			}
			select {
			case <-done:
				return
			default:
			}
			handle(raw)
		}
	}
}

func logUnexpectedPayload(topic string, raw any) {
	appLogger.Debug("ignoring unexpected payload", "topic", topic, "payload_type", fmt.Sprintf("%T", raw))
}
