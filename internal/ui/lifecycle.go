package ui

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/config"
)

// startNotificationService attaches the Fyne sender to the runtime and starts
// engine reachability notifications. The returned stop detaches the sender.
func startNotificationService(dep RuntimeDependencies, fyApp fyne.App, startHidden bool) func() {
	var appForeground atomic.Bool
	appForeground.Store(!startHidden)
	fyApp.Lifecycle().SetOnEnteredForeground(func() {
		appForeground.Store(true)
	})
	fyApp.Lifecycle().SetOnExitedForeground(func() {
		appForeground.Store(false)
	})

	sender := NewFyneNotificationSender(fyApp)
	if dep.Actions.AttachNotifier != nil {
		dep.Actions.AttachNotifier(sender)
	}

	currentConfig := dep.Data.CurrentConfig
	if currentConfig == nil {
		currentConfig = config.Default
	}

	ctx, cancel := context.WithCancel(context.Background())
	service := nzapp.NewNotificationService(
		dep.Data.Bus,
		currentConfig,
		appForeground.Load,
		sender,
		slog.With("component", "ui.notifications"),
	)
	service.Start(ctx)

	var stopOnce sync.Once

	return func() {
		stopOnce.Do(func() {
			cancel()
			if dep.Actions.AttachNotifier != nil {
				dep.Actions.AttachNotifier(nil)
			}
		})
	}
}
