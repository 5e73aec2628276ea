package ui

import (
	"context"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

type settingsInput struct {
	desc     settings.Descriptor
	object   fyne.CanvasObject
	setValue func(text string)
	errLabel *widget.Label
}

func (in *settingsInput) showError(text string) {
	in.errLabel.SetText(text)
	in.errLabel.Show()
}

func (in *settingsInput) clearError() {
	in.errLabel.SetText("")
	in.errLabel.Hide()
}

// pluginSettingsTab renders one input per staged field. Inputs write through
// SetPending on every change; rejected values only show an inline error.
type pluginSettingsTab struct {
	page   *tabPage
	store  *settings.Store
	inputs []*settingsInput

	maskSummary  *widget.Label
	status       *widget.Label
	saveButton   *widget.Button
	revertButton *widget.Button

	syncing  bool
	runOnUI  func(func())
	runAsync func(func())
	reload   func() error
}

func newPluginSettingsTab(dep RuntimeDependencies, onEditMask func()) *pluginSettingsTab {
	t := &pluginSettingsTab{
		store:       dep.Data.Settings,
		maskSummary: widget.NewLabel(""),
		status:      widget.NewLabel(""),
		runOnUI:     dep.UIHooks.runOnUI(),
		runAsync:    dep.UIHooks.runAsync(),
		reload:      dep.Actions.OnReloadSettings,
	}
	if t.store == nil {
		t.page = newTabPage(container.NewCenter(widget.NewLabel("Settings are unavailable")), nil)

		return t
	}

	form := container.New(layout.NewFormLayout())
	for _, desc := range t.store.Fields() {
		label := widget.NewLabel(desc.Label)
		if desc.Kind == settings.KindMask {
			editButton := widget.NewButton("Edit", onEditMask)
			if onEditMask == nil {
				editButton.Disable()
			}
			form.Add(label)
			form.Add(container.NewHBox(t.maskSummary, layout.NewSpacer(), editButton))

			continue
		}
		in := t.newInput(desc)
		t.inputs = append(t.inputs, in)
		form.Add(label)
		form.Add(container.NewVBox(in.object, in.errLabel))
	}

	t.saveButton = widget.NewButton("Save", t.Save)
	t.saveButton.Importance = widget.HighImportance
	t.revertButton = widget.NewButton("Revert", t.Revert)
	reloadButton := widget.NewButton("Reload", t.Reload)
	if t.reload == nil {
		reloadButton.Disable()
	}

	actions := container.NewHBox(t.saveButton, t.revertButton, layout.NewSpacer(), reloadButton)
	content := container.NewBorder(
		widget.NewLabel("Inspection settings"),
		container.NewVBox(actions, t.status),
		nil, nil,
		container.NewVScroll(form),
	)
	t.page = newTabPage(content, t.SyncFromStore)
	t.SyncFromStore()

	return t
}

func (t *pluginSettingsTab) Content() fyne.CanvasObject {
	return t.page
}

func (t *pluginSettingsTab) newInput(desc settings.Descriptor) *settingsInput {
	in := &settingsInput{desc: desc, errLabel: widget.NewLabel("")}
	in.errLabel.Importance = widget.DangerImportance
	in.errLabel.Wrapping = fyne.TextWrapWord
	in.errLabel.Hide()

	onChanged := func(raw string) {
		t.stage(in, raw)
	}

	switch desc.Kind {
	case settings.KindBool:
		check := widget.NewCheck("", func(v bool) {
			onChanged(strconv.FormatBool(v))
		})
		in.object = check
		in.setValue = func(text string) { check.SetChecked(text == "true") }
	case settings.KindChoice:
		selectWidget := widget.NewSelect(desc.Options, onChanged)
		in.object = selectWidget
		in.setValue = selectWidget.SetSelected
	case settings.KindSecret:
		entry := widget.NewPasswordEntry()
		entry.OnChanged = onChanged
		in.object = entry
		in.setValue = entry.SetText
	default:
		entry := widget.NewEntry()
		entry.SetPlaceHolder(desc.Allowed)
		entry.OnChanged = onChanged
		in.object = entry
		in.setValue = entry.SetText
	}

	return in
}

func (t *pluginSettingsTab) stage(in *settingsInput, raw string) {
	if t.syncing {
		return
	}
	if err := t.store.SetPending(in.desc.ID, raw); err != nil {
		in.showError(err.Error())
	} else {
		in.clearError()
	}
	t.refreshDirty()
}

// SyncFromStore resets every input to its pending value and drops inline errors.
func (t *pluginSettingsTab) SyncFromStore() {
	if t.store == nil {
		return
	}
	t.syncing = true
	for _, in := range t.inputs {
		text, _ := t.store.PendingText(in.desc.ID)
		in.setValue(text)
		in.clearError()
	}
	t.syncing = false
	t.refreshMaskSummary()
	t.refreshDirty()
}

// OnCommitted refreshes the parts that depend on committed values.
func (t *pluginSettingsTab) OnCommitted() {
	if t.store == nil {
		return
	}
	t.refreshMaskSummary()
	t.refreshDirty()
}

// OnSaveFailed reports a rejected save, including saves started by the mask editor.
func (t *pluginSettingsTab) OnSaveFailed(failed domain.SettingsSaveFailed) {
	t.status.SetText("Save failed: " + failed.Err)
	if t.store != nil {
		t.refreshDirty()
	}
}

func (t *pluginSettingsTab) refreshMaskSummary() {
	encoded, _ := t.store.PendingText(settings.FieldMaskData)
	g, err := mask.Decode(encoded)
	if err != nil {
		t.maskSummary.SetText("Mask is invalid")

		return
	}
	t.maskSummary.SetText(formatMaskSummary(g.Count()))
}

func (t *pluginSettingsTab) refreshDirty() {
	if t.revertButton == nil {
		return
	}
	if len(t.store.Dirty()) == 0 {
		t.revertButton.Disable()

		return
	}
	t.revertButton.Enable()
}

func (t *pluginSettingsTab) Save() {
	t.saveButton.Disable()
	t.status.SetText("Saving...")
	done := t.store.SaveAsync(context.Background())
	t.runAsync(func() {
		err := <-done
		t.runOnUI(func() {
			t.saveButton.Enable()
			if err != nil {
				t.status.SetText("Save failed: " + err.Error())
			} else {
				t.status.SetText("Saved")
			}
			t.refreshMaskSummary()
			t.refreshDirty()
		})
	})
}

func (t *pluginSettingsTab) Revert() {
	t.store.Revert()
	t.SyncFromStore()
	t.status.SetText("Changes reverted")
}

func (t *pluginSettingsTab) Reload() {
	if t.reload == nil {
		return
	}
	t.status.SetText("Reloading...")
	t.runAsync(func() {
		err := t.reload()
		t.runOnUI(func() {
			if err != nil {
				t.status.SetText("Reload failed: " + err.Error())

				return
			}
			t.SyncFromStore()
			t.status.SetText("Reloaded")
		})
	})
}

func formatMaskSummary(excluded int) string {
	if excluded == 0 {
		return "No regions excluded"
	}
	total := mask.Size * mask.Size

	return fmt.Sprintf("%d of %d cells excluded (%.1f%%)", excluded, total, float64(excluded)*100/float64(total))
}
