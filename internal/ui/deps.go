package ui

import (
	"context"

	"fyne.io/fyne/v2"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/config"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/maskedit"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

type DataDependencies struct {
	Config                config.AppConfig
	EngineURL             string
	Bus                   bus.MessageBus
	Settings              *settings.Store
	MaskSession           *maskedit.Session
	CurrentConfig         func() config.AppConfig
	CurrentConnStatus     func() (connectors.ConnectionStatus, bool)
	CurrentStatus         func() (domain.StatusSnapshot, bool)
	CurrentUpdateSnapshot func() (nzapp.UpdateSnapshot, bool)
	RecentStatus          func(ctx context.Context, limit int) ([]domain.StatusSnapshot, error)
}

type ActionDependencies struct {
	// OnSave persists app config and reports whether a restart is needed.
	OnSave           func(cfg config.AppConfig) (bool, error)
	OnClearDB        func() error
	OnReloadSettings func() error
	// OnStart launches background polling once the UI listens to the bus.
	OnStart        func()
	AttachNotifier func(sender notifications.Sender)
	OnQuit         func()
}

type UIHooks struct {
	CurrentWindow   func() fyne.Window
	RunOnUI         func(func())
	RunAsync        func(func())
	ShowErrorDialog func(err error, window fyne.Window)
}

type LaunchOptions struct {
	StartHidden bool
}

type RuntimeDependencies struct {
	Data    DataDependencies
	Actions ActionDependencies
	UIHooks UIHooks
	Launch  LaunchOptions
}

func (h UIHooks) runOnUI() func(func()) {
	if h.RunOnUI != nil {
		return h.RunOnUI
	}

	return fyne.Do
}

func (h UIHooks) runAsync() func(func()) {
	if h.RunAsync != nil {
		return h.RunAsync
	}

	return func(fn func()) { go fn() }
}

func (h UIHooks) currentWindow() func() fyne.Window {
	if h.CurrentWindow != nil {
		return h.CurrentWindow
	}

	return currentWindow
}

func currentWindow() fyne.Window {
	currentApp := fyne.CurrentApp()
	if currentApp == nil || currentApp.Driver() == nil {
		return nil
	}
	windows := currentApp.Driver().AllWindows()
	if len(windows) == 0 {
		return nil
	}

	return windows[0]
}
