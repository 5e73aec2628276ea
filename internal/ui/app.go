package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

const appID = "io.github." + nzapp.Name

var appLogger = slog.With("component", "ui")

var newFyneApp = func() fyne.App {
	return fyneapp.NewWithID(appID)
}

// Run builds the main window and blocks until the UI exits.
func Run(dep RuntimeDependencies) error {
	return runWithApp(dep, newFyneApp())
}
