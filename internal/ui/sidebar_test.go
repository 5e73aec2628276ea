package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type onShowCanvasObject struct {
	fyne.CanvasObject
	showCalls int
}

func (o *onShowCanvasObject) OnShow() {
	o.showCalls++
}

func TestBuildSidebarLayoutSwitchesTabsAndCallsOnShow(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	statusTab := widget.NewLabel("Status")
	pluginTab := &onShowCanvasObject{CanvasObject: widget.NewLabel("Plugin")}

	layout := buildSidebarLayout([]sidebarTab{
		{name: "Status", icon: theme.VisibilityIcon(), content: statusTab},
		{name: "Plugin", icon: theme.SettingsIcon(), content: pluginTab},
		{name: "Empty", icon: theme.InfoIcon()},
	}, newIconNavButton(nil, updateIconSize, nil), widget.NewIcon(nil))

	if !statusTab.Visible() || pluginTab.Visible() {
		t.Fatalf("expected only the first tab visible")
	}
	if layout.active() != "Status" {
		t.Fatalf("unexpected active tab: %q", layout.active())
	}

	layout.switchTo("Plugin")
	if statusTab.Visible() || !pluginTab.Visible() {
		t.Fatalf("expected plugin tab visible after switch")
	}
	if pluginTab.showCalls != 1 {
		t.Fatalf("expected OnShow once, got %d", pluginTab.showCalls)
	}

	layout.switchTo("Plugin")
	layout.switchTo("Empty")
	if layout.active() != "Plugin" || pluginTab.showCalls != 1 {
		t.Fatalf("expected no-op switches, active=%q showCalls=%d", layout.active(), pluginTab.showCalls)
	}

	var navButtons int
	for _, object := range layout.left.Objects {
		if _, ok := object.(*iconNavButton); ok {
			navButtons++
		}
	}
	// Two tab buttons plus the update button.
	if navButtons != 3 {
		t.Fatalf("expected 3 nav buttons, got %d", navButtons)
	}
}
