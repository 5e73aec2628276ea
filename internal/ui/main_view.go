package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
)

const (
	tabStatus = "Status"
	tabPlugin = "Plugin"
	tabApp    = "App"
)

type mainView struct {
	left       fyne.CanvasObject
	rightStack fyne.CanvasObject
	switchTo   func(name string)
	activeTab  func() string

	statusTab       *statusTab
	pluginTab       *pluginSettingsTab
	updateIndicator *updateIndicator
	connStatus      *connectionStatusPresenter
}

func buildMainView(dep RuntimeDependencies, window fyne.Window) *mainView {
	view := &mainView{}

	var onEditMask func()
	if dep.Data.MaskSession != nil {
		onEditMask = func() {
			showMaskEditor(window, dep.Data.MaskSession, view.statusTab.LatestImage(), dep.UIHooks)
		}
	}

	statusConnLabel := widget.NewLabel("")
	statusConnLabel.Wrapping = fyne.TextWrapWord
	settingsConnLabel := widget.NewLabel("")
	settingsConnLabel.Wrapping = fyne.TextWrapWord
	view.connStatus = newConnectionStatusPresenter(window, initialConnStatus(dep), statusConnLabel, settingsConnLabel)

	view.statusTab = newStatusTab(dep, statusConnLabel, onEditMask)
	view.pluginTab = newPluginSettingsTab(dep, onEditMask)
	appTab := newAppSettingsTab(dep, settingsConnLabel)

	var initialUpdate nzapp.UpdateSnapshot
	initialUpdateKnown := false
	if dep.Data.CurrentUpdateSnapshot != nil {
		initialUpdate, initialUpdateKnown = dep.Data.CurrentUpdateSnapshot()
	}
	view.updateIndicator = newUpdateIndicator(initialUpdate, initialUpdateKnown, func(snapshot nzapp.UpdateSnapshot) {
		showUpdateDialog(window, snapshot, openExternalURL)
	})

	sidebar := buildSidebarLayout([]sidebarTab{
		{name: tabStatus, icon: theme.VisibilityIcon(), content: view.statusTab.Content()},
		{name: tabPlugin, icon: theme.SettingsIcon(), content: view.pluginTab.Content()},
		{name: tabApp, icon: theme.ComputerIcon(), content: appTab},
	}, view.updateIndicator.Button(), view.connStatus.SidebarIcon())
	view.left = sidebar.left
	view.rightStack = sidebar.rightStack
	view.switchTo = sidebar.switchTo
	view.activeTab = sidebar.active

	return view
}
