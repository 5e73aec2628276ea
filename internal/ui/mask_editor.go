package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/nozzlewatch/nozzlewatch/internal/mask"
	"github.com/nozzlewatch/nozzlewatch/internal/maskedit"
)

const (
	maskOverlayResolution = mask.Size * 4
	maskCanvasMinWidth    = 480
	maskCanvasMinHeight   = 360
	maskConfirmTimeout    = 15 * time.Second

	// Used when no snapshot image has been received yet.
	defaultNativeWidth  = 640
	defaultNativeHeight = 480
)

var maskOverlayColor = color.NRGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0x90}

// maskCanvas draws the inspected image with the exclusion overlay on top and
// turns pointer strokes into session edits.
type maskCanvas struct {
	widget.BaseWidget

	session    *maskedit.Session
	background *canvas.Image
	overlay    *canvas.Image
	nativeSize fyne.Size
	pressed    bool
	onChange   func()
}

var (
	_ fyne.Draggable    = (*maskCanvas)(nil)
	_ desktop.Mouseable = (*maskCanvas)(nil)
)

func newMaskCanvas(session *maskedit.Session, img image.Image) *maskCanvas {
	c := &maskCanvas{
		session:    session,
		background: canvas.NewImageFromImage(img),
		overlay:    canvas.NewImageFromImage(nil),
		nativeSize: fyne.NewSize(defaultNativeWidth, defaultNativeHeight),
	}
	c.background.FillMode = canvas.ImageFillStretch
	c.overlay.FillMode = canvas.ImageFillStretch
	c.overlay.ScaleMode = canvas.ImageScalePixels
	if img != nil {
		if b := img.Bounds(); b.Dx() > 0 && b.Dy() > 0 {
			c.nativeSize = fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
		}
	}
	c.ExtendBaseWidget(c)
	c.refreshOverlay()

	return c
}

func (c *maskCanvas) viewport() mask.Viewport {
	size := c.Size()

	return mask.Viewport{
		DisplayWidth:  float64(size.Width),
		DisplayHeight: float64(size.Height),
		NativeWidth:   float64(c.nativeSize.Width),
		NativeHeight:  float64(c.nativeSize.Height),
	}
}

func (c *maskCanvas) refreshOverlay() {
	g := c.session.Overlay()
	c.overlay.Image = g.Image(maskOverlayResolution, maskOverlayResolution, maskOverlayColor)
	c.overlay.Refresh()
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *maskCanvas) press(pos fyne.Position) {
	c.pressed = true
	if c.session.Press(float64(pos.X), float64(pos.Y), c.viewport()) > 0 {
		c.refreshOverlay()
	}
}

func (c *maskCanvas) release() {
	c.pressed = false
	c.session.Release()
}

func (c *maskCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.press(ev.Position)
}

func (c *maskCanvas) MouseUp(_ *desktop.MouseEvent) {
	c.release()
}

// Dragged starts a stroke on touch drivers, which deliver no MouseDown.
func (c *maskCanvas) Dragged(ev *fyne.DragEvent) {
	if !c.pressed {
		c.press(ev.Position)

		return
	}
	if c.session.Move(float64(ev.Position.X), float64(ev.Position.Y), c.viewport()) > 0 {
		c.refreshOverlay()
	}
}

func (c *maskCanvas) DragEnd() {
	c.release()
}

func (c *maskCanvas) MinSize() fyne.Size {
	c.ExtendBaseWidget(c)

	return fyne.NewSize(maskCanvasMinWidth, maskCanvasMinHeight)
}

func (c *maskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(c.background, c.overlay))
}

type maskEditor struct {
	session *maskedit.Session
	canvas  *maskCanvas
	content fyne.CanvasObject

	status        *widget.Label
	cellCount     *widget.Label
	confirmButton *widget.Button
	clearButton   *widget.Button
	cancelButton  *widget.Button

	runOnUI  func(func())
	runAsync func(func())
	onClose  func()
}

// newMaskEditor opens the session and builds the editor content. onClose runs
// once the session has been confirmed or cancelled.
func newMaskEditor(session *maskedit.Session, img image.Image, hooks UIHooks, onClose func()) *maskEditor {
	session.Open()

	e := &maskEditor{
		session:   session,
		status:    widget.NewLabel(maskEditorHint(session.BrushRadius())),
		cellCount: widget.NewLabel(""),
		runOnUI:   hooks.runOnUI(),
		runAsync:  hooks.runAsync(),
		onClose:   onClose,
	}
	e.status.Wrapping = fyne.TextWrapWord
	e.canvas = newMaskCanvas(session, img)
	e.canvas.onChange = e.updateCellCount
	e.updateCellCount()

	e.confirmButton = widget.NewButton("Confirm", e.Confirm)
	e.confirmButton.Importance = widget.HighImportance
	e.clearButton = widget.NewButton("Clear", e.Clear)
	e.cancelButton = widget.NewButton("Cancel", e.Cancel)

	actions := container.NewHBox(e.cellCount, layout.NewSpacer(), e.clearButton, e.cancelButton, e.confirmButton)
	e.content = container.NewBorder(nil, container.NewVBox(e.status, actions), nil, nil, e.canvas)

	return e
}

func maskEditorHint(radius float64) string {
	if radius <= 0 {
		return "Paint over regions to exclude from detection, one cell at a time"
	}

	return fmt.Sprintf("Paint over regions to exclude from detection (brush radius %g px)", radius)
}

func (e *maskEditor) Content() fyne.CanvasObject {
	return e.content
}

func (e *maskEditor) updateCellCount() {
	g := e.session.Overlay()
	e.cellCount.SetText(formatMaskSummary(g.Count()))
}

func (e *maskEditor) setBusy(busy bool) {
	for _, b := range []*widget.Button{e.confirmButton, e.clearButton, e.cancelButton} {
		if busy {
			b.Disable()
		} else {
			b.Enable()
		}
	}
}

// Confirm saves the merged mask. The editor stays open when the save fails.
func (e *maskEditor) Confirm() {
	e.setBusy(true)
	e.status.SetText("Saving mask...")
	e.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), maskConfirmTimeout)
		defer cancel()
		err := e.session.Confirm(ctx)
		e.runOnUI(func() {
			e.setBusy(false)
			if err != nil {
				e.status.SetText("Save failed: " + err.Error())

				return
			}
			e.close()
		})
	})
}

func (e *maskEditor) Clear() {
	e.session.Clear()
	e.canvas.refreshOverlay()
	e.status.SetText("Mask cleared. Confirm to save or Cancel to keep the previous mask")
}

func (e *maskEditor) Cancel() {
	e.session.CancelAfterClear()
	e.close()
}

func (e *maskEditor) close() {
	if e.onClose != nil {
		e.onClose()
	}
}

func showMaskEditor(window fyne.Window, session *maskedit.Session, img image.Image, hooks UIHooks) {
	if window == nil || session == nil {
		return
	}
	var dlg dialog.Dialog
	editor := newMaskEditor(session, img, hooks, func() {
		if dlg != nil {
			dlg.Hide()
		}
	})
	dlg = dialog.NewCustomWithoutButtons("Exclusion Mask", editor.Content(), window)
	dlg.SetOnClosed(func() {
		if session.IsOpen() {
			session.Cancel()
		}
	})
	dlg.Resize(fyne.NewSize(900, 700))
	dlg.Show()
}
