package ui

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

func TestStartUIEventListenersDispatchesEveryTopic(t *testing.T) {
	messageBus := bus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer messageBus.Close()

	var connEvents, snapshotEvents, committedEvents, saveFailedEvents, updateEvents atomic.Int64
	var lastFailures atomic.Int64
	var lastSaveErr atomic.Value
	stop := startUIEventListeners(messageBus, uiEventHandlers{
		OnConnStatus: func(_ connectors.ConnectionStatus) { connEvents.Add(1) },
		OnStatusSnapshot: func(s domain.StatusSnapshot) {
			lastFailures.Store(int64(s.FailureCount))
			snapshotEvents.Add(1)
		},
		OnSettingsCommitted: func() { committedEvents.Add(1) },
		OnSettingsSaveFailed: func(failed domain.SettingsSaveFailed) {
			lastSaveErr.Store(failed.Err)
			saveFailedEvents.Add(1)
		},
		OnUpdateSnapshot: func(_ nzapp.UpdateSnapshot) { updateEvents.Add(1) },
	})
	defer stop()

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateConnected})
	messageBus.Publish(connectors.TopicStatusSnapshot, domain.StatusSnapshot{FailureCount: 3})
	messageBus.Publish(connectors.TopicSettingsCommitted, domain.DefaultPluginSettings())
	messageBus.Publish(connectors.TopicSettingsSaveFail, domain.SettingsSaveFailed{Err: "engine unreachable"})
	messageBus.Publish(connectors.TopicUpdateSnapshot, nzapp.UpdateSnapshot{CurrentVersion: "0.1.0"})

	waitForCondition(t, func() bool {
		return connEvents.Load() == 1 && snapshotEvents.Load() == 1 && committedEvents.Load() == 1 &&
			saveFailedEvents.Load() == 1 && updateEvents.Load() == 1
	})
	if lastFailures.Load() != 3 {
		t.Fatalf("expected snapshot payload to be passed through, got %d", lastFailures.Load())
	}
	if got := lastSaveErr.Load(); got != "engine unreachable" {
		t.Fatalf("expected save failure payload to be passed through, got %v", got)
	}
}

func TestStartUIEventListenersIgnoresUnexpectedPayloads(t *testing.T) {
	messageBus := bus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer messageBus.Close()

	var connEvents atomic.Int64
	stop := startUIEventListeners(messageBus, uiEventHandlers{
		OnConnStatus: func(_ connectors.ConnectionStatus) { connEvents.Add(1) },
	})
	defer stop()

	messageBus.Publish(connectors.TopicConnStatus, "not a status")
	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected})

	waitForCondition(t, func() bool {
		return connEvents.Load() == 1
	})
}

func TestStartUIEventListenersStopPreventsFurtherCallbacks(t *testing.T) {
	messageBus := bus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer messageBus.Close()

	var connEvents atomic.Int64
	stop := startUIEventListeners(messageBus, uiEventHandlers{
		OnConnStatus: func(_ connectors.ConnectionStatus) { connEvents.Add(1) },
	})

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateConnected})
	waitForCondition(t, func() bool {
		return connEvents.Load() == 1
	})

	stop()
	stop()

	messageBus.Publish(connectors.TopicConnStatus, connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected})
	time.Sleep(100 * time.Millisecond)
	if connEvents.Load() != 1 {
		t.Fatalf("expected no callbacks after stop, got %d", connEvents.Load())
	}
}

func TestStartUIEventListenersNilBusReturnsNoopStop(t *testing.T) {
	stop := startUIEventListeners(nil, uiEventHandlers{})
	stop()
	stop()
}
