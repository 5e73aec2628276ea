package ui

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	fynetest "fyne.io/fyne/v2/test"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

func newTestStore(persister settings.Persister) *settings.Store {
	return settings.New(settings.Options{
		Persister: persister,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func newTestPluginTab(t *testing.T, store *settings.Store, reload func() error) *pluginSettingsTab {
	t.Helper()
	tab := newPluginSettingsTab(RuntimeDependencies{
		Data:    DataDependencies{Settings: store},
		Actions: ActionDependencies{OnReloadSettings: reload},
		UIHooks: syncHooks(),
	}, nil)
	_ = fynetest.NewTempWindow(t, tab.Content())

	return tab
}

func TestPluginSettingsTabRejectsInvalidValueInline(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	store := newTestStore(&persisterSpy{})
	tab := newTestPluginTab(t, store, nil)

	maxCount := mustFindEntryByText(t, tab.Content(), "2")
	maxCount.SetText("0")

	errLabel := mustFindLabelByPrefix(t, tab.Content(), "Max Failure Count must be")
	if !errLabel.Visible() {
		t.Fatalf("expected inline error to be visible")
	}
	if got, _ := store.PendingText(settings.FieldMaxCount); got != "2" {
		t.Fatalf("expected pending value to stay 2, got %q", got)
	}
	if !tab.revertButton.Disabled() {
		t.Fatalf("expected revert disabled without valid edits")
	}

	maxCount.SetText("7")
	if errLabel.Visible() {
		t.Fatalf("expected inline error cleared after valid input")
	}
	if got, _ := store.PendingText(settings.FieldMaxCount); got != "7" {
		t.Fatalf("expected pending value 7, got %q", got)
	}
	if tab.revertButton.Disabled() {
		t.Fatalf("expected revert enabled with pending edits")
	}
}

func TestPluginSettingsTabSavePersistsPendingValues(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	spy := &persisterSpy{}
	store := newTestStore(spy)
	tab := newTestPluginTab(t, store, nil)

	mustFindEntryByText(t, tab.Content(), "300").SetText("120")
	fynetest.Tap(mustFindButtonByText(t, tab.Content(), "Save"))

	saved, calls := spy.last()
	if calls != 1 {
		t.Fatalf("expected one save, got %d", calls)
	}
	if saved.CountTime != 120 {
		t.Fatalf("expected count time 120 to be saved, got %d", saved.CountTime)
	}
	if tab.status.Text != "Saved" {
		t.Fatalf("unexpected status: %q", tab.status.Text)
	}
	if store.Committed().CountTime != 120 {
		t.Fatalf("expected committed count time to be updated")
	}
	if !tab.revertButton.Disabled() {
		t.Fatalf("expected no pending edits after save")
	}
}

func TestPluginSettingsTabSaveFailureKeepsEdits(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	spy := &persisterSpy{}
	spy.setErr(errors.New("engine offline"))
	store := newTestStore(spy)
	tab := newTestPluginTab(t, store, nil)

	mustFindEntryByText(t, tab.Content(), "5").SetText("9")
	fynetest.Tap(mustFindButtonByText(t, tab.Content(), "Save"))

	if !strings.HasPrefix(tab.status.Text, "Save failed:") || !strings.Contains(tab.status.Text, "engine offline") {
		t.Fatalf("unexpected status: %q", tab.status.Text)
	}
	if got, _ := store.PendingText(settings.FieldMaxNotification); got != "9" {
		t.Fatalf("expected pending edit kept, got %q", got)
	}
	if store.Committed().MaxNotification != 5 {
		t.Fatalf("expected committed value unchanged, got %d", store.Committed().MaxNotification)
	}
	if tab.saveButton.Disabled() {
		t.Fatalf("expected save button enabled for retry")
	}
}

func TestPluginSettingsTabRevertRestoresInputs(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	store := newTestStore(&persisterSpy{})
	tab := newTestPluginTab(t, store, nil)

	entry := mustFindEntryByText(t, tab.Content(), "0.7")
	entry.SetText("0.9")
	fynetest.Tap(tab.revertButton)

	if entry.Text != "0.7" {
		t.Fatalf("expected entry reverted to 0.7, got %q", entry.Text)
	}
	if len(store.Dirty()) != 0 {
		t.Fatalf("expected no dirty fields after revert, got %v", store.Dirty())
	}
	if tab.status.Text != "Changes reverted" {
		t.Fatalf("unexpected status: %q", tab.status.Text)
	}
}

func TestPluginSettingsTabReloadResyncsFromStore(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	store := newTestStore(&persisterSpy{})

	reloaded := domain.DefaultPluginSettings()
	reloaded.MaxCount = 42
	var g mask.Grid
	g.Set(0, 0, true)
	g.Set(1, 1, true)
	reloaded.MaskData = mask.Encode(g)

	tab := newTestPluginTab(t, store, func() error {
		store.Load(reloaded)

		return nil
	})
	if tab.maskSummary.Text != "No regions excluded" {
		t.Fatalf("unexpected initial mask summary: %q", tab.maskSummary.Text)
	}

	fynetest.Tap(mustFindButtonByText(t, tab.Content(), "Reload"))

	mustFindEntryByText(t, tab.Content(), "42")
	if !strings.HasPrefix(tab.maskSummary.Text, "2 of 4096 cells excluded") {
		t.Fatalf("unexpected mask summary: %q", tab.maskSummary.Text)
	}
	if tab.status.Text != "Reloaded" {
		t.Fatalf("unexpected status: %q", tab.status.Text)
	}
}

func TestPluginSettingsTabShowsFractionalCPUSpeed(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	store := newTestStore(&persisterSpy{})
	persisted := domain.DefaultPluginSettings()
	persisted.CPUSpeedControl = 0.3
	store.Load(persisted)

	tab := newTestPluginTab(t, store, nil)

	cpuSpeed := mustFindEntryByText(t, tab.Content(), "0.3")
	cpuSpeed.SetText("0.65")
	if got, _ := store.PendingText(settings.FieldCPUSpeedControl); got != "0.65" {
		t.Fatalf("expected pending cpu speed 0.65, got %q", got)
	}
}

func TestPluginSettingsTabWithoutStore(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	tab := newPluginSettingsTab(RuntimeDependencies{}, nil)
	_ = fynetest.NewTempWindow(t, tab.Content())

	mustFindLabelByPrefix(t, tab.Content(), "Settings are unavailable")
	tab.SyncFromStore()
	tab.OnCommitted()
}

func TestFormatMaskSummary(t *testing.T) {
	if got := formatMaskSummary(0); got != "No regions excluded" {
		t.Fatalf("unexpected empty summary: %q", got)
	}
	if got := formatMaskSummary(1024); got != "1024 of 4096 cells excluded (25.0%)" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
