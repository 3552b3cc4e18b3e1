// Package render turns classification grids into console text.
package render

import (
	"strings"

	"photoboard-go/internal/processing"
)

// Ramp runs from sparse to dense.
const Ramp = " .:nhBXWW"

const countsPerGlyph = 25

func GlyphIndex(count int) int {
	if count <= 0 {
		return 0
	}
	i := count / countsPerGlyph
	if i > len(Ramp)-1 {
		i = len(Ramp) - 1
	}
	return i
}

func Glyph(count int) byte {
	return Ramp[GlyphIndex(count)]
}

// Density renders one glyph per cell, one newline-terminated line per row.
func Density(g processing.Grid) string {
	var b strings.Builder
	b.Grow(g.Rows * (g.Cols + 1))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			b.WriteByte(Glyph(g.At(r, c)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

const (
	Occupied = 'W'
	Empty    = '.'
)

func Occupancy(o processing.Occupancy) string {
	var b strings.Builder
	b.Grow(o.Rows * (o.Cols + 1))
	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			if o.At(r, c) {
				b.WriteByte(Occupied)
			} else {
				b.WriteByte(Empty)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
