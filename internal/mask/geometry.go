package mask

import "math"

// Viewport relates the on-screen size of the inspected image to its native pixel size.
type Viewport struct {
	DisplayWidth  float64
	DisplayHeight float64
	NativeWidth   float64
	NativeHeight  float64
}

func (v Viewport) valid() bool {
	return v.DisplayWidth > 0 && v.DisplayHeight > 0 && v.NativeWidth > 0 && v.NativeHeight > 0
}

// PointerToCell maps a pointer position in display pixels to the grid cell under it.
// Positions outside the image clamp to the nearest edge cell.
func PointerToCell(x, y float64, v Viewport) Cell {
	if !v.valid() {
		return Cell{}
	}

	nativeX := x * (v.NativeWidth / v.DisplayWidth)
	nativeY := y * (v.NativeHeight / v.DisplayHeight)

	return Cell{
		Row: clampIndex(math.Floor(nativeY * Size / v.NativeHeight)),
		Col: clampIndex(math.Floor(nativeX * Size / v.NativeWidth)),
	}
}

// BrushCells returns every cell touched by a filled disk of the given display-pixel
// radius centered on the pointer. The cell under the pointer is always first.
func BrushCells(x, y, radius float64, v Viewport) []Cell {
	center := PointerToCell(x, y, v)
	if radius <= 0 || !v.valid() {
		return []Cell{center}
	}

	cellW := v.DisplayWidth / Size
	cellH := v.DisplayHeight / Size
	minCol := clampIndex(math.Floor((x - radius) / cellW))
	maxCol := clampIndex(math.Floor((x + radius) / cellW))
	minRow := clampIndex(math.Floor((y - radius) / cellH))
	maxRow := clampIndex(math.Floor((y + radius) / cellH))

	cells := []Cell{center}
	r2 := radius * radius
	for row := minRow; row <= maxRow; row++ {
		top := float64(row) * cellH
		nearY := clampFloat(y, top, top+cellH)
		for col := minCol; col <= maxCol; col++ {
			if row == center.Row && col == center.Col {
				continue
			}
			left := float64(col) * cellW
			nearX := clampFloat(x, left, left+cellW)
			dx := nearX - x
			dy := nearY - y
			if dx*dx+dy*dy <= r2 {
				cells = append(cells, Cell{Row: row, Col: col})
			}
		}
	}

	return cells
}

// Paint marks every given cell as excluded. It never clears a cell.
func (g *Grid) Paint(cells []Cell) int {
	added := 0
	for _, c := range cells {
		if c.Row < 0 || c.Row >= Size || c.Col < 0 || c.Col >= Size {
			continue
		}
		if !g[c.Row][c.Col] {
			g[c.Row][c.Col] = true
			added++
		}
	}

	return added
}

func clampIndex(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > Size-1 {
		return Size - 1
	}

	return int(v)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
