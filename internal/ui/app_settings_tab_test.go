package ui

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/nozzlewatch/nozzlewatch/internal/config"
)

func validForm() appSettingsForm {
	return appSettingsForm{
		engineURL:        " http://printer.local:8000/ ",
		timeoutMs:        "3000",
		pollIntervalMs:   "250",
		discardStale:     true,
		brushRadius:      "8.5",
		historyEnabled:   true,
		keepRows:         "500",
		logLevel:         "debug",
		notifyConnection: true,
	}
}

func TestReadAppSettingsFormAppliesValues(t *testing.T) {
	cfg, err := readAppSettingsForm(config.Default(), validForm())
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	if cfg.Engine.BaseURL != "http://printer.local:8000" {
		t.Fatalf("expected trimmed base url, got %q", cfg.Engine.BaseURL)
	}
	if cfg.Engine.RequestTimeoutMs != 3000 || cfg.Poll.IntervalMs != 250 || cfg.Mask.BrushRadius != 8.5 {
		t.Fatalf("unexpected parsed values: %+v", cfg)
	}
	if cfg.History.KeepRows != 500 || cfg.Logging.Level != "debug" || cfg.UI.CheckUpdates {
		t.Fatalf("unexpected parsed values: %+v", cfg)
	}
}

func TestReadAppSettingsFormRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*appSettingsForm)
		want   string
	}{
		{name: "timeout", mutate: func(f *appSettingsForm) { f.timeoutMs = "soon" }, want: "request timeout"},
		{name: "interval below minimum", mutate: func(f *appSettingsForm) { f.pollIntervalMs = "50" }, want: "poll interval"},
		{name: "brush", mutate: func(f *appSettingsForm) { f.brushRadius = "wide" }, want: "brush radius"},
		{name: "brush too large", mutate: func(f *appSettingsForm) { f.brushRadius = "1000" }, want: "brush radius"},
		{name: "keep rows", mutate: func(f *appSettingsForm) { f.keepRows = "-1" }, want: "rows to keep"},
		{name: "engine scheme", mutate: func(f *appSettingsForm) { f.engineURL = "ftp://printer" }, want: "http or https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			_, err := readAppSettingsForm(config.Default(), form)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestReadAppSettingsFormIgnoresKeepRowsWhenHistoryDisabled(t *testing.T) {
	form := validForm()
	form.historyEnabled = false
	form.keepRows = "not a number"

	cfg, err := readAppSettingsForm(config.Default(), form)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	if cfg.History.Enabled || cfg.History.KeepRows != config.DefaultHistoryKeepRows {
		t.Fatalf("unexpected history config: %+v", cfg.History)
	}
}

func TestAppSettingsTabSaveReportsRestart(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	var saved []config.AppConfig
	restart := false
	dep := RuntimeDependencies{
		Data: DataDependencies{Config: config.Default()},
		Actions: ActionDependencies{
			OnSave: func(cfg config.AppConfig) (bool, error) {
				saved = append(saved, cfg)

				return restart, nil
			},
		},
	}
	tab := newAppSettingsTab(dep, widget.NewLabel(""))
	_ = fynetest.NewTempWindow(t, tab)

	saveButton := mustFindButtonByText(t, tab, "Save")
	fynetest.Tap(saveButton)
	mustFindLabelByPrefix(t, tab, "Saved")
	if len(saved) != 1 {
		t.Fatalf("expected one save, got %d", len(saved))
	}

	restart = true
	mustFindEntryByPlaceholder(t, tab, "http://printer.local:8000 (empty keeps settings local)").SetText("http://engine:9000")
	fynetest.Tap(saveButton)

	status := mustFindLabelByPrefix(t, tab, "Saved")
	if status.Text != "Saved. Restart to apply engine changes" {
		t.Fatalf("unexpected status: %q", status.Text)
	}
	if saved[1].Engine.BaseURL != "http://engine:9000" {
		t.Fatalf("expected new engine url saved, got %q", saved[1].Engine.BaseURL)
	}
}

func TestAppSettingsTabSaveErrorAndInvalidInput(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	var saveCalls int
	dep := RuntimeDependencies{
		Data: DataDependencies{Config: config.Default()},
		Actions: ActionDependencies{
			OnSave: func(config.AppConfig) (bool, error) {
				saveCalls++

				return false, errors.New("disk full")
			},
		},
	}
	tab := newAppSettingsTab(dep, widget.NewLabel(""))
	_ = fynetest.NewTempWindow(t, tab)

	saveButton := mustFindButtonByText(t, tab, "Save")
	fynetest.Tap(saveButton)
	if status := mustFindLabelByPrefix(t, tab, "Save failed:"); !strings.Contains(status.Text, "disk full") {
		t.Fatalf("unexpected status: %q", status.Text)
	}

	mustFindEntryByText(t, tab, "5000").SetText("never")
	fynetest.Tap(saveButton)
	if saveCalls != 1 {
		t.Fatalf("expected invalid form not to be saved, got %d calls", saveCalls)
	}
	if status := mustFindLabelByPrefix(t, tab, "Save failed:"); !strings.Contains(status.Text, "request timeout") {
		t.Fatalf("unexpected status: %q", status.Text)
	}
}

func TestAppSettingsTabClearDatabaseUnavailable(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)

	tab := newAppSettingsTab(RuntimeDependencies{Data: DataDependencies{Config: config.Default()}}, widget.NewLabel(""))
	_ = fynetest.NewTempWindow(t, tab)

	if !mustFindButtonByText(t, tab, "Clear database").Disabled() {
		t.Fatalf("expected clear database disabled without action")
	}
}

func TestUniqueValuesSortsNumerically(t *testing.T) {
	got := uniqueValues([]string{"500", "100", " 2000 ", "500", ""})
	want := []string{"100", "500", "2000"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
