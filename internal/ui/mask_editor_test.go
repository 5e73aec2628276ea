package ui

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	fynetest "fyne.io/fyne/v2/test"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
	"github.com/nozzlewatch/nozzlewatch/internal/maskedit"
	"github.com/nozzlewatch/nozzlewatch/internal/settings"
)

type maskEditorFixture struct {
	store      *settings.Store
	spy        *persisterSpy
	session    *maskedit.Session
	editor     *maskEditor
	closeCalls int
}

func newMaskEditorFixture(t *testing.T, committed mask.Grid) *maskEditorFixture {
	t.Helper()
	f := &maskEditorFixture{spy: &persisterSpy{}}
	f.store = newTestStore(f.spy)
	persisted := domain.DefaultPluginSettings()
	persisted.MaskData = mask.Encode(committed)
	f.store.Load(persisted)
	f.session = maskedit.New(f.store, maskedit.Options{
		BrushRadius: 0,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	img := image.NewRGBA(image.Rect(0, 0, mask.Size, mask.Size))
	f.editor = newMaskEditor(f.session, img, syncHooks(), func() { f.closeCalls++ })
	f.editor.canvas.Resize(fyne.NewSize(mask.Size, mask.Size))

	return f
}

func primaryDown(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func TestMaskEditorConfirmPersistsStroke(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	f := newMaskEditorFixture(t, mask.Grid{})

	if !f.session.IsOpen() {
		t.Fatalf("expected editor to open the session")
	}
	f.editor.canvas.MouseDown(primaryDown(10.5, 20.5))
	f.editor.canvas.MouseUp(primaryDown(10.5, 20.5))

	if !strings.HasPrefix(f.editor.cellCount.Text, "1 of 4096") {
		t.Fatalf("unexpected cell count: %q", f.editor.cellCount.Text)
	}

	fynetest.Tap(f.editor.confirmButton)

	saved, calls := f.spy.last()
	if calls != 1 {
		t.Fatalf("expected one save, got %d", calls)
	}
	g, err := mask.Decode(saved.MaskData)
	if err != nil {
		t.Fatalf("decode saved mask: %v", err)
	}
	if !g.At(20, 10) || g.Count() != 1 {
		t.Fatalf("expected only cell (20,10) excluded, count=%d", g.Count())
	}
	if f.closeCalls != 1 || f.session.IsOpen() {
		t.Fatalf("expected editor closed after confirm, closeCalls=%d open=%v", f.closeCalls, f.session.IsOpen())
	}
}

func TestMaskEditorConfirmFailureKeepsEditorOpen(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	f := newMaskEditorFixture(t, mask.Grid{})
	f.spy.setErr(errors.New("engine offline"))

	f.editor.canvas.MouseDown(primaryDown(1, 1))
	f.editor.canvas.MouseUp(primaryDown(1, 1))
	fynetest.Tap(f.editor.confirmButton)

	if !strings.HasPrefix(f.editor.status.Text, "Save failed:") {
		t.Fatalf("unexpected status: %q", f.editor.status.Text)
	}
	if f.closeCalls != 0 || !f.session.IsOpen() {
		t.Fatalf("expected editor to stay open, closeCalls=%d open=%v", f.closeCalls, f.session.IsOpen())
	}
	if f.editor.confirmButton.Disabled() {
		t.Fatalf("expected confirm button enabled for retry")
	}
}

func TestMaskEditorClearThenCancelKeepsCommittedMask(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	var committed mask.Grid
	committed.Set(5, 5, true)
	committed.Set(6, 6, true)
	f := newMaskEditorFixture(t, committed)

	if !strings.HasPrefix(f.editor.cellCount.Text, "2 of 4096") {
		t.Fatalf("expected committed cells shown, got %q", f.editor.cellCount.Text)
	}

	fynetest.Tap(f.editor.clearButton)
	if f.editor.cellCount.Text != "No regions excluded" {
		t.Fatalf("expected cleared preview, got %q", f.editor.cellCount.Text)
	}

	fynetest.Tap(f.editor.cancelButton)
	if f.closeCalls != 1 || f.session.IsOpen() {
		t.Fatalf("expected editor closed after cancel")
	}
	if _, calls := f.spy.last(); calls != 0 {
		t.Fatalf("expected nothing persisted, got %d saves", calls)
	}
	if f.store.CommittedMask() != mask.Encode(committed) {
		t.Fatalf("expected committed mask unchanged")
	}
}

func TestMaskCanvasDragStartsStrokeWithoutMouseDown(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	f := newMaskEditorFixture(t, mask.Grid{})

	f.editor.canvas.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(0.5, 0.5)}})
	f.editor.canvas.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(3.5, 0.5)}})
	f.editor.canvas.DragEnd()

	overlay := f.session.Overlay()
	if !overlay.At(0, 0) || !overlay.At(0, 3) {
		t.Fatalf("expected drag to mark start and end cells")
	}

	f.editor.canvas.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(30.5, 30.5)}})
	if !f.session.Overlay().At(30, 30) {
		t.Fatalf("expected a new drag after DragEnd to start a stroke")
	}
}

func TestMaskCanvasIgnoresSecondaryButton(t *testing.T) {
	app := fynetest.NewApp()
	t.Cleanup(app.Quit)
	f := newMaskEditorFixture(t, mask.Grid{})

	f.editor.canvas.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(2, 2)},
		Button:     desktop.MouseButtonSecondary,
	})
	if !f.session.Overlay().IsEmpty() {
		t.Fatalf("expected secondary button not to paint")
	}
}

func TestMaskEditorHintShowsBrushRadius(t *testing.T) {
	f := newMaskEditorFixture(t, mask.Grid{})
	if got := f.editor.status.Text; !strings.HasSuffix(got, "one cell at a time") {
		t.Fatalf("unexpected hint for zero radius: %q", got)
	}

	session := maskedit.New(f.store, maskedit.Options{
		BrushRadius: 12,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	editor := newMaskEditor(session, image.NewRGBA(image.Rect(0, 0, 8, 8)), syncHooks(), func() {})
	if got := editor.status.Text; !strings.Contains(got, "brush radius 12 px") {
		t.Fatalf("unexpected hint for brush radius: %q", got)
	}
}
