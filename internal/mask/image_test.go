package mask

import (
	"image/color"
	"testing"
)

func TestImagePaintsExcludedCellsOnly(t *testing.T) {
	var g Grid
	g.Set(0, 0, true)
	g.Set(63, 63, true)
	red := color.RGBA{R: 128, A: 128}

	img := g.Image(128, 128, red)

	if got := img.RGBAAt(0, 0); got != red {
		t.Fatalf("expected top-left pixel painted, got %+v", got)
	}
	if got := img.RGBAAt(1, 1); got != red {
		t.Fatalf("expected whole 2px block painted, got %+v", got)
	}
	if got := img.RGBAAt(2, 0); got.A != 0 {
		t.Fatalf("expected neighbouring block transparent, got %+v", got)
	}
	if got := img.RGBAAt(127, 127); got != red {
		t.Fatalf("expected bottom-right pixel painted, got %+v", got)
	}
}

func TestImageMatchesPointerMapping(t *testing.T) {
	var g Grid
	g.Set(10, 20, true)
	vp := Viewport{DisplayWidth: 100, DisplayHeight: 70, NativeWidth: 100, NativeHeight: 70}
	img := g.Image(100, 70, color.White)

	for y := 0; y < 70; y++ {
		for x := 0; x < 100; x++ {
			cell := PointerToCell(float64(x), float64(y), vp)
			painted := img.RGBAAt(x, y).A != 0
			if painted != g.At(cell.Row, cell.Col) {
				t.Fatalf("pixel (%d,%d) painted=%v but cell %+v excluded=%v", x, y, painted, cell, g.At(cell.Row, cell.Col))
			}
		}
	}
}

func TestImageZeroSize(t *testing.T) {
	var g Grid
	if b := g.Image(0, 10, color.White).Bounds(); !b.Empty() {
		t.Fatalf("expected empty image, got %v", b)
	}
}
