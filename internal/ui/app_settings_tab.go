package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/config"
)

var defaultPollIntervalOptions = []string{"100", "250", "500", "1000", "2000", "5000"}

func newAppSettingsTab(dep RuntimeDependencies, connStatusLabel *widget.Label) fyne.CanvasObject {
	current := dep.Data.Config
	if dep.Data.CurrentConfig != nil {
		current = dep.Data.CurrentConfig()
	}
	current.FillMissingDefaults()

	engineURLEntry := widget.NewEntry()
	engineURLEntry.SetText(current.Engine.BaseURL)
	engineURLEntry.SetPlaceHolder("http://printer.local:8000 (empty keeps settings local)")

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(strconv.Itoa(current.Engine.RequestTimeoutMs))

	pollSelect := widget.NewSelect(uniqueValues(append(defaultPollIntervalOptions, strconv.Itoa(current.Poll.IntervalMs))), nil)
	pollSelect.SetSelected(strconv.Itoa(current.Poll.IntervalMs))

	discardStale := widget.NewCheck("", nil)
	discardStale.SetChecked(current.Poll.DiscardStale)

	brushEntry := widget.NewEntry()
	brushEntry.SetText(strconv.FormatFloat(current.Mask.BrushRadius, 'f', -1, 64))

	historyEnabled := widget.NewCheck("", nil)
	historyEnabled.SetChecked(current.History.Enabled)
	keepRowsEntry := widget.NewEntry()
	keepRowsEntry.SetText(strconv.Itoa(current.History.KeepRows))
	setKeepRowsEnabled := func(enabled bool) {
		if enabled {
			keepRowsEntry.Enable()
			return
		}
		keepRowsEntry.Disable()
	}
	historyEnabled.OnChanged = setKeepRowsEnabled
	setKeepRowsEnabled(historyEnabled.Checked)

	logToFile := widget.NewCheck("", nil)
	logToFile.SetChecked(current.Logging.LogToFile)
	levelSelect := widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	levelSelect.SetSelected(strings.ToLower(current.Logging.Level))
	if levelSelect.Selected == "" {
		levelSelect.SetSelected("info")
	}

	notifyWhenFocused := widget.NewCheck("", nil)
	notifyWhenFocused.SetChecked(current.UI.Notifications.NotifyWhenFocused)
	notifyConnection := widget.NewCheck("", nil)
	notifyConnection.SetChecked(current.UI.Notifications.Events.EngineConnection)
	checkUpdates := widget.NewCheck("", nil)
	checkUpdates.SetChecked(current.UI.CheckUpdates)

	status := widget.NewLabel("")
	status.Wrapping = fyne.TextWrapWord

	saveButton := widget.NewButton("Save", func() {
		cfg, err := readAppSettingsForm(current, appSettingsForm{
			engineURL:         engineURLEntry.Text,
			timeoutMs:         timeoutEntry.Text,
			pollIntervalMs:    pollSelect.Selected,
			discardStale:      discardStale.Checked,
			brushRadius:       brushEntry.Text,
			historyEnabled:    historyEnabled.Checked,
			keepRows:          keepRowsEntry.Text,
			logLevel:          levelSelect.Selected,
			logToFile:         logToFile.Checked,
			notifyWhenFocused: notifyWhenFocused.Checked,
			notifyConnection:  notifyConnection.Checked,
			checkUpdates:      checkUpdates.Checked,
		})
		if err != nil {
			status.SetText("Save failed: " + err.Error())
			return
		}
		if dep.Actions.OnSave == nil {
			status.SetText("Save failed: saving is not available")
			return
		}
		restart, err := dep.Actions.OnSave(cfg)
		if err != nil {
			status.SetText("Save failed: " + err.Error())
			return
		}
		current = cfg
		if restart {
			status.SetText("Saved. Restart to apply engine changes")
			return
		}
		status.SetText("Saved")
	})
	saveButton.Importance = widget.HighImportance

	clearDBButton := widget.NewButton("Clear database", func() {
		if dep.Actions.OnClearDB == nil {
			status.SetText("Database clear is not available")
			return
		}
		window := dep.UIHooks.currentWindow()()
		if window == nil {
			status.SetText("Database clear failed: active window is unavailable")
			return
		}
		dialog.ShowConfirm(
			"Clear database?",
			"This removes the local settings mirror and the status history. Continue?",
			func(ok bool) {
				if !ok {
					status.SetText("Database clear canceled")
					return
				}
				if err := dep.Actions.OnClearDB(); err != nil {
					status.SetText("Database clear failed: " + err.Error())
					return
				}
				status.SetText("Database cleared")
			},
			window,
		)
	})
	if dep.Actions.OnClearDB == nil {
		clearDBButton.Disable()
	}

	engineBlock := widget.NewCard("Engine", "", container.NewVBox(
		connStatusLabel,
		widget.NewForm(
			widget.NewFormItem("Base URL", engineURLEntry),
			widget.NewFormItem("Request timeout (ms)", timeoutEntry),
		),
	))
	pollingBlock := widget.NewCard("Polling", "", widget.NewForm(
		widget.NewFormItem("Interval (ms)", pollSelect),
		widget.NewFormItem("Skip stale responses", discardStale),
	))
	maskBlock := widget.NewCard("Mask editor", "", widget.NewForm(
		widget.NewFormItem("Brush radius (px)", brushEntry),
	))
	historyBlock := widget.NewCard("History", "", widget.NewForm(
		widget.NewFormItem("Record status history", historyEnabled),
		widget.NewFormItem("Rows to keep", keepRowsEntry),
	))
	loggingBlock := widget.NewCard("Logging", "", widget.NewForm(
		widget.NewFormItem("Log Level", levelSelect),
		widget.NewFormItem("Log to file", logToFile),
	))
	notificationsBlock := widget.NewCard("Notifications", "", widget.NewForm(
		widget.NewFormItem("Notify when focused", notifyWhenFocused),
		widget.NewFormItem("Engine connection changes", notifyConnection),
		widget.NewFormItem("Check for updates", checkUpdates),
	))
	maintenanceBlock := widget.NewCard("Maintenance", "", container.NewVBox(
		clearDBButton,
	))

	sourceLink := widget.NewHyperlink("Source", mustParseURL(nzapp.SourceURL))
	versionBlock := widget.NewCard("", "", container.NewVBox(
		widget.NewLabel(nzapp.DisplayName),
		widget.NewLabel("Version: "+nzapp.BuildVersionWithDate()),
		sourceLink,
	))

	content := container.NewVBox(
		widget.NewLabel("App settings"),
		engineBlock,
		pollingBlock,
		maskBlock,
		historyBlock,
		loggingBlock,
		notificationsBlock,
		maintenanceBlock,
		saveButton,
		versionBlock,
		status,
	)

	return container.NewVScroll(content)
}

type appSettingsForm struct {
	engineURL         string
	timeoutMs         string
	pollIntervalMs    string
	discardStale      bool
	brushRadius       string
	historyEnabled    bool
	keepRows          string
	logLevel          string
	logToFile         bool
	notifyWhenFocused bool
	notifyConnection  bool
	checkUpdates      bool
}

// readAppSettingsForm parses the form on top of base and validates the result.
func readAppSettingsForm(base config.AppConfig, form appSettingsForm) (config.AppConfig, error) {
	timeout, err := parsePositiveInt("request timeout", form.timeoutMs)
	if err != nil {
		return config.AppConfig{}, err
	}
	interval, err := parsePositiveInt("poll interval", form.pollIntervalMs)
	if err != nil {
		return config.AppConfig{}, err
	}
	brush, err := strconv.ParseFloat(strings.TrimSpace(form.brushRadius), 64)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("brush radius must be a number")
	}
	keepRows := base.History.KeepRows
	if form.historyEnabled {
		keepRows, err = parsePositiveInt("rows to keep", form.keepRows)
		if err != nil {
			return config.AppConfig{}, err
		}
	}

	cfg := base
	cfg.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(form.engineURL), "/")
	cfg.Engine.RequestTimeoutMs = timeout
	cfg.Poll.IntervalMs = interval
	cfg.Poll.DiscardStale = form.discardStale
	cfg.Mask.BrushRadius = brush
	cfg.History.Enabled = form.historyEnabled
	cfg.History.KeepRows = keepRows
	cfg.Logging.Level = form.logLevel
	cfg.Logging.LogToFile = form.logToFile
	cfg.UI.Notifications.NotifyWhenFocused = form.notifyWhenFocused
	cfg.UI.Notifications.Events.EngineConnection = form.notifyConnection
	cfg.UI.CheckUpdates = form.checkUpdates

	if err := cfg.Validate(); err != nil {
		return config.AppConfig{}, err
	}

	return cfg, nil
}

func parsePositiveInt(name, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive whole number", name)
	}

	return value, nil
}

func uniqueValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		if errA != nil || errB != nil {
			return out[i] < out[j]
		}

		return a < b
	})

	return out
}
