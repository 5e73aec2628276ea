package mask

import (
	"image"
	"image/color"
)

// Image renders the excluded cells over a transparent width×height canvas.
// Each pixel takes the cell PointerToCell would map it to.
func (g Grid) Image(width, height int, c color.Color) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if g.IsEmpty() {
		return img
	}

	cols := make([]int, width)
	for x := range cols {
		cols[x] = clampIndex(float64(x * Size / width))
	}
	for y := 0; y < height; y++ {
		row := clampIndex(float64(y * Size / height))
		for x := 0; x < width; x++ {
			if g[row][cols[x]] {
				img.Set(x, y, c)
			}
		}
	}

	return img
}
