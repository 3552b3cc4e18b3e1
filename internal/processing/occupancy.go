package processing

// OccupancyThreshold is the in-band pixel count a coarse cell must exceed.
const OccupancyThreshold = 100

// Occupancy marks coarse cells holding enough in-band pixels.
type Occupancy struct {
	Rows  int
	Cols  int
	Cells []bool
}

func Occupy(g Grid, threshold int) Occupancy {
	cells := make([]bool, len(g.Counts))
	for i, c := range g.Counts {
		cells[i] = c > threshold
	}
	return Occupancy{Rows: g.Rows, Cols: g.Cols, Cells: cells}
}

func (o Occupancy) At(row, col int) bool {
	return o.Cells[row*o.Cols+col]
}

// Vacated reports whether any cell occupied in prev is empty in cur. Cells
// that become occupied do not count. A nil prev, or one of a different
// shape, always reports a change.
func Vacated(prev *Occupancy, cur Occupancy) bool {
	if prev == nil || prev.Rows != cur.Rows || prev.Cols != cur.Cols {
		return true
	}
	for i, was := range prev.Cells {
		if was && !cur.Cells[i] {
			return true
		}
	}
	return false
}
