package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

func configureSystemTray(fyApp fyne.App, window fyne.Window, quit func()) bool {
	desk, ok := fyApp.(desktop.App)
	if !ok {
		return false
	}

	desk.SetSystemTrayIcon(appIcon())
	desk.SetSystemTrayMenu(fyne.NewMenu(nzapp.DisplayName,
		fyne.NewMenuItem("Show", func() {
			appLogger.Debug("system tray show action invoked")
			window.Show()
			window.RequestFocus()
		}),
		fyne.NewMenuItem("Quit", func() {
			appLogger.Debug("system tray quit action invoked")
			quit()
		}),
	))

	return true
}
