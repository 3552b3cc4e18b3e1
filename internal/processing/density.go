package processing

import (
	"photoboard-go/internal/types"
)

// Cell is the pixel footprint of one grid cell.
type Cell struct {
	W int
	H int
}

var (
	DenseCell  = Cell{W: 10, H: 20}
	CoarseCell = Cell{W: 80, H: 80}
)

// Grid counts in-band pixels per cell, row-major.
type Grid struct {
	Rows   int
	Cols   int
	Counts []int
}

func NewGrid(width, height int, cell Cell) Grid {
	rows := ceilDiv(height, cell.H)
	cols := ceilDiv(width, cell.W)
	return Grid{Rows: rows, Cols: cols, Counts: make([]int, rows*cols)}
}

func (g Grid) At(row, col int) int {
	return g.Counts[row*g.Cols+col]
}

// Density reduces a frame to per-cell in-band counts in a single pass.
func Density(frame types.DepthFrame, band types.DistanceBand, cell Cell) Grid {
	g := NewGrid(frame.Width, frame.Height, cell)
	for y := 0; y < frame.Height; y++ {
		row := frame.Data[y*frame.Width : (y+1)*frame.Width]
		base := (y / cell.H) * g.Cols
		for x, d := range row {
			if band.Contains(d) {
				g.Counts[base+x/cell.W]++
			}
		}
	}
	return g
}

// Classification holds both views produced from one frame.
type Classification struct {
	Dense  Grid
	Coarse Grid
}

// Classify builds the dense and coarse grids in one pass over the frame.
func Classify(frame types.DepthFrame, band types.DistanceBand) Classification {
	dense := NewGrid(frame.Width, frame.Height, DenseCell)
	coarse := NewGrid(frame.Width, frame.Height, CoarseCell)
	for y := 0; y < frame.Height; y++ {
		row := frame.Data[y*frame.Width : (y+1)*frame.Width]
		denseBase := (y / DenseCell.H) * dense.Cols
		coarseBase := (y / CoarseCell.H) * coarse.Cols
		for x, d := range row {
			if !band.Contains(d) {
				continue
			}
			dense.Counts[denseBase+x/DenseCell.W]++
			coarse.Counts[coarseBase+x/CoarseCell.W]++
		}
	}
	return Classification{Dense: dense, Coarse: coarse}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
