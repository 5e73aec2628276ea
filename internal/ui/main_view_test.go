package ui

import (
	"testing"

	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/nozzlewatch/nozzlewatch/internal/config"
)

func TestBuildMainViewWiresTabs(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	window := fynetest.NewTempWindow(t, widget.NewLabel(""))

	store := newTestStore(&persisterSpy{})
	view := buildMainView(RuntimeDependencies{
		Data: DataDependencies{
			Config:   config.Default(),
			Settings: store,
		},
		UIHooks: syncHooks(),
	}, window)

	if view.left == nil || view.rightStack == nil {
		t.Fatalf("expected sidebar containers")
	}
	if view.statusTab == nil || view.pluginTab == nil || view.updateIndicator == nil || view.connStatus == nil {
		t.Fatalf("expected every presenter to be built")
	}
	if view.activeTab() != tabStatus {
		t.Fatalf("expected status tab first, got %q", view.activeTab())
	}
	if view.updateIndicator.Button().Visible() {
		t.Fatalf("expected update button hidden without a snapshot")
	}
	if window.Title() != formatWindowTitle(initialConnStatus(RuntimeDependencies{})) {
		t.Fatalf("unexpected window title: %q", window.Title())
	}

	view.switchTo(tabApp)
	if view.activeTab() != tabApp {
		t.Fatalf("expected app tab active, got %q", view.activeTab())
	}
	window.SetContent(view.rightStack)
	mustFindButtonByText(t, view.rightStack, "Clear database")
}
