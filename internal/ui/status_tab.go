package ui

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	nzapp "github.com/nozzlewatch/nozzlewatch/internal/app"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

const (
	statusImageMinWidth  = 480
	statusImageMinHeight = 360
	historyTimeLayout    = "15:04:05"
)

// statusTab is the passive status panel refreshed by poll results.
type statusTab struct {
	page *tabPage

	image        *canvas.Image
	imageMessage *widget.Label
	failureCount *widget.Label
	aiStatus     *widget.Label
	cpuTemp      *widget.Label
	updatedAt    *widget.Label

	history     *widget.List
	historyRows []domain.StatusSnapshot
	historyNote *widget.Label

	lastImage image.Image

	recent   func(ctx context.Context, limit int) ([]domain.StatusSnapshot, error)
	runOnUI  func(func())
	runAsync func(func())
}

func newStatusTab(dep RuntimeDependencies, connStatusLabel *widget.Label, onEditMask func()) *statusTab {
	t := &statusTab{
		image:        canvas.NewImageFromImage(nil),
		imageMessage: widget.NewLabel("Waiting for the first snapshot..."),
		failureCount: widget.NewLabel("-"),
		aiStatus:     widget.NewLabel("-"),
		cpuTemp:      widget.NewLabel("-"),
		updatedAt:    widget.NewLabel("-"),
		historyNote:  widget.NewLabel(""),
		recent:       dep.Data.RecentStatus,
		runOnUI:      dep.UIHooks.runOnUI(),
		runAsync:     dep.UIHooks.runAsync(),
	}
	t.image.FillMode = canvas.ImageFillContain
	t.image.SetMinSize(fyne.NewSize(statusImageMinWidth, statusImageMinHeight))
	t.imageMessage.Alignment = fyne.TextAlignCenter
	if dep.Data.EngineURL == "" {
		t.imageMessage.SetText("No inspection engine configured. Set the engine URL in App settings.")
	}

	t.history = widget.NewList(
		func() int {
			return len(t.historyRows)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, object fyne.CanvasObject) {
			label, ok := object.(*widget.Label)
			if !ok {
				return
			}
			if id < 0 || id >= len(t.historyRows) {
				label.SetText("")

				return
			}
			label.SetText(formatHistoryRow(t.historyRows[id]))
		},
	)

	details := widget.NewForm(
		widget.NewFormItem("Failure count", t.failureCount),
		widget.NewFormItem("AI status", t.aiStatus),
		widget.NewFormItem("CPU temperature", t.cpuTemp),
		widget.NewFormItem("Updated", t.updatedAt),
	)

	editMaskButton := widget.NewButton("Edit exclusion mask", onEditMask)
	if onEditMask == nil {
		editMaskButton.Disable()
	}
	refreshHistoryButton := widget.NewButton("Refresh", t.ReloadHistory)
	if t.recent == nil {
		refreshHistoryButton.Disable()
	}

	preview := container.NewStack(container.NewCenter(t.imageMessage), t.image)
	historyBlock := widget.NewCard("Recent history", "", container.NewBorder(
		container.NewHBox(t.historyNote, layout.NewSpacer(), refreshHistoryButton),
		nil, nil, nil,
		t.history,
	))
	side := container.NewBorder(
		container.NewVBox(
			widget.NewCard("Engine", "", connStatusLabel),
			widget.NewCard("Inspection", "", details),
			editMaskButton,
		),
		nil, nil, nil,
		historyBlock,
	)

	t.page = newTabPage(container.NewBorder(nil, nil, nil, side, preview), t.ReloadHistory)

	return t
}

func (t *statusTab) Content() fyne.CanvasObject {
	return t.page
}

// Apply replaces the displayed snapshot wholesale. A nil img keeps the
// previous picture and shows why the new one is missing.
func (t *statusTab) Apply(snapshot domain.StatusSnapshot, img image.Image, imgErr error) {
	t.failureCount.SetText(strconv.Itoa(snapshot.FailureCount))
	t.aiStatus.SetText(valueOrDash(snapshot.AIStatus))
	t.cpuTemp.SetText(formatTemperature(snapshot.CPUTemperature))
	t.updatedAt.SetText(formatUpdatedAt(snapshot.ReceivedAt))

	if img == nil {
		if imgErr != nil && t.lastImage == nil {
			t.imageMessage.SetText("Image unavailable: " + imgErr.Error())
		}

		return
	}
	t.lastImage = img
	t.imageMessage.SetText("")
	t.image.Image = img
	t.image.Refresh()
}

// LatestImage is the last successfully decoded snapshot, or nil.
func (t *statusTab) LatestImage() image.Image {
	return t.lastImage
}

func (t *statusTab) ReloadHistory() {
	if t.recent == nil {
		return
	}
	recent := t.recent
	t.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), uiActionTimeout)
		defer cancel()
		rows, err := recent(ctx, nzapp.StatusHistoryLen)
		t.runOnUI(func() {
			if err != nil {
				t.historyNote.SetText("History unavailable: " + err.Error())

				return
			}
			t.historyRows = rows
			t.historyNote.SetText(fmt.Sprintf("%d snapshots", len(rows)))
			t.history.Refresh()
		})
	})
}

func formatTemperature(celsius float64) string {
	if celsius == 0 {
		return "-"
	}

	return fmt.Sprintf("%.1f °C", celsius)
}

func formatUpdatedAt(at time.Time) string {
	if at.IsZero() {
		return "-"
	}

	return at.Local().Format(historyTimeLayout)
}

func formatHistoryRow(s domain.StatusSnapshot) string {
	return fmt.Sprintf(
		"%s  failures %d  %s  %s",
		formatUpdatedAt(s.ReceivedAt),
		s.FailureCount,
		valueOrDash(s.AIStatus),
		formatTemperature(s.CPUTemperature),
	)
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}

	return v
}
