package mask

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// Size is the fixed side length of the exclusion grid.
	Size = 64
	// EncodedLen is the length of the canonical mask string.
	EncodedLen = Size * Size
)

// Grid marks inspection blocks excluded from detection. Rows[0] is the top row.
// Grid is a value type: assigning it copies every cell.
type Grid [Size][Size]bool

// Cell addresses one grid block.
type Cell struct {
	Row int
	Col int
}

// FormatError reports a mask string that is not a canonical 4096-char binary string.
type FormatError struct {
	Length int
	Index  int
	Char   byte
}

func (e *FormatError) Error() string {
	if e.Length != EncodedLen {
		return fmt.Sprintf("mask: invalid length %d, want %d", e.Length, EncodedLen)
	}

	return fmt.Sprintf("mask: invalid character %q at index %d", e.Char, e.Index)
}

func (g *Grid) Set(row, col int, excluded bool) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return
	}
	g[row][col] = excluded
}

func (g Grid) At(row, col int) bool {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return false
	}

	return g[row][col]
}

// Count returns the number of excluded cells.
func (g Grid) Count() int {
	n := 0
	for r := range g {
		for c := range g[r] {
			if g[r][c] {
				n++
			}
		}
	}

	return n
}

func (g Grid) IsEmpty() bool {
	return g == Grid{}
}

// Encode flattens the grid row-major into the canonical string.
func Encode(g Grid) string {
	var b strings.Builder
	b.Grow(EncodedLen)
	for r := range g {
		for c := range g[r] {
			if g[r][c] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}

	return b.String()
}

// Decode parses the canonical string. It never returns a partially filled grid.
func Decode(s string) (Grid, error) {
	var g Grid
	if len(s) != EncodedLen {
		return Grid{}, &FormatError{Length: len(s)}
	}
	for i := 0; i < EncodedLen; i++ {
		switch s[i] {
		case '1':
			g[i/Size][i%Size] = true
		case '0':
		default:
			return Grid{}, &FormatError{Length: len(s), Index: i, Char: s[i]}
		}
	}

	return g, nil
}

// DecodeOrEmpty decodes s and falls back to an all-false grid on malformed input.
func DecodeOrEmpty(s string, logger *slog.Logger) Grid {
	g, err := Decode(s)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("stored exclusion mask is corrupt, using empty mask", "error", err)

		return Grid{}
	}

	return g
}

// Validate reports whether s is a canonical mask string.
func Validate(s string) error {
	_, err := Decode(s)

	return err
}

// EmptyString is the canonical encoding of an all-false grid.
func EmptyString() string {
	return strings.Repeat("0", EncodedLen)
}

// Merge returns the element-wise OR of a and b.
func Merge(a, b Grid) Grid {
	out := a
	for r := range b {
		for c := range b[r] {
			if b[r][c] {
				out[r][c] = true
			}
		}
	}

	return out
}
