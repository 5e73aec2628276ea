package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

func appIcon() fyne.Resource {
	return theme.VisibilityIcon()
}

func runWithApp(dep RuntimeDependencies, fyApp fyne.App) error {
	fyApp.SetIcon(appIcon())
	appLogger.Info(
		"starting UI runtime",
		"start_hidden", dep.Launch.StartHidden,
		"engine", dep.Data.EngineURL,
	)

	window := fyApp.NewWindow(nzapp.DisplayName)
	window.Resize(fyne.NewSize(1100, 760))
	view := buildMainView(dep, window)

	stopNotifications := startNotificationService(dep, fyApp, dep.Launch.StartHidden)
	stopUIListeners := bindPresentationListeners(dep, view)
	// Polling starts only after listeners are attached so the first snapshot is not missed.
	if dep.Actions.OnStart != nil {
		dep.Actions.OnStart()
	}

	window.SetContent(container.NewBorder(nil, nil, view.left, nil, view.rightStack))

	uiRuntime := newUIRuntime(
		fyApp,
		window,
		stopNotifications,
		stopUIListeners,
		dep.Actions.OnQuit,
	)
	if configureSystemTray(fyApp, window, uiRuntime.Quit) {
		uiRuntime.BindCloseIntercept()
	}

	uiRuntime.Run(dep.Launch.StartHidden)

	return nil
}
