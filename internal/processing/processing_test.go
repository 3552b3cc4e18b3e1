package processing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoboard-go/internal/types"
)

func makeFrame(width, height int, fill uint16) types.DepthFrame {
	data := make([]uint16, width*height)
	for i := range data {
		data[i] = fill
	}
	return types.DepthFrame{Width: width, Height: height, Data: data}
}

func paintBlock(f types.DepthFrame, x0, y0, w, h int, v uint16) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			f.Data[y*f.Width+x] = v
		}
	}
}

func TestCalibrate(t *testing.T) {
	t.Parallel()

	band := Calibrate(1.5, 2.0, 0.001)
	assert.Equal(t, types.DistanceBand{Near: 1500, Far: 2000}, band)

	// 1.0 / 0.0003 = 3333.33..
	band = Calibrate(1.0, 3.0, 0.0003)
	assert.Equal(t, uint16(3333), band.Near)
	assert.Equal(t, uint16(10000), band.Far)

	band = Calibrate(0, 1000, 0.001)
	assert.Equal(t, uint16(0), band.Near)
	assert.Equal(t, uint16(65535), band.Far)
}

func TestCalibratePanicsOnBadScale(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { Calibrate(1, 2, 0) })
	assert.Panics(t, func() { Calibrate(1, 2, -0.001) })
}

func TestBandEdges(t *testing.T) {
	t.Parallel()

	band := types.DistanceBand{Near: 100, Far: 300}
	cases := []struct {
		depth uint16
		want  bool
	}{
		{0, false},
		{100, false},
		{101, true},
		{299, true},
		{300, false},
		{65535, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, band.Contains(tc.depth), "depth %d", tc.depth)
	}

	// zero is "no return" even when the band starts below it
	assert.False(t, types.DistanceBand{Near: 0, Far: 65535}.Contains(0))
}

func TestDensityShape(t *testing.T) {
	t.Parallel()

	g := Density(makeFrame(640, 480, 0), types.DistanceBand{Near: 1, Far: 10}, DenseCell)
	assert.Equal(t, 24, g.Rows)
	assert.Equal(t, 64, g.Cols)

	// partial cells round up
	g = Density(makeFrame(645, 490, 0), types.DistanceBand{Near: 1, Far: 10}, CoarseCell)
	assert.Equal(t, 7, g.Rows)
	assert.Equal(t, 9, g.Cols)
}

func TestDensityCounts(t *testing.T) {
	t.Parallel()

	f := makeFrame(20, 40, 0)
	paintBlock(f, 0, 0, 10, 20, 150)
	paintBlock(f, 10, 20, 5, 4, 150)
	f.Data[0] = 300 // out of band at the far edge

	g := Density(f, types.DistanceBand{Near: 100, Far: 300}, DenseCell)
	want := Grid{Rows: 2, Cols: 2, Counts: []int{199, 0, 0, 20}}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Fatalf("density mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyMatchesDensity(t *testing.T) {
	t.Parallel()

	f := makeFrame(640, 480, 5000)
	paintBlock(f, 100, 50, 200, 150, 1700)
	paintBlock(f, 500, 400, 30, 30, 0)
	band := types.DistanceBand{Near: 1500, Far: 2000}

	c := Classify(f, band)
	assert.Equal(t, Density(f, band, DenseCell), c.Dense)
	assert.Equal(t, Density(f, band, CoarseCell), c.Coarse)
}

func TestOccupy(t *testing.T) {
	t.Parallel()

	g := Grid{Rows: 1, Cols: 3, Counts: []int{100, 101, 0}}
	o := Occupy(g, OccupancyThreshold)
	assert.Equal(t, []bool{false, true, false}, o.Cells)
	assert.True(t, o.At(0, 1))
}

func TestVacated(t *testing.T) {
	t.Parallel()

	t.Run("occupied to empty", func(t *testing.T) {
		prev := &Occupancy{Rows: 1, Cols: 2, Cells: []bool{true, false}}
		cur := Occupancy{Rows: 1, Cols: 2, Cells: []bool{false, false}}
		assert.True(t, Vacated(prev, cur))
	})

	t.Run("newly occupied is not a change", func(t *testing.T) {
		prev := &Occupancy{Rows: 1, Cols: 1, Cells: []bool{false}}
		cur := Occupancy{Rows: 1, Cols: 1, Cells: []bool{true}}
		assert.False(t, Vacated(prev, cur))
	})

	t.Run("unchanged", func(t *testing.T) {
		prev := &Occupancy{Rows: 1, Cols: 2, Cells: []bool{true, false}}
		cur := Occupancy{Rows: 1, Cols: 2, Cells: []bool{true, false}}
		assert.False(t, Vacated(prev, cur))
	})

	t.Run("first cycle", func(t *testing.T) {
		cur := Occupancy{Rows: 1, Cols: 1, Cells: []bool{true}}
		assert.True(t, Vacated(nil, cur))
	})

	t.Run("shape change", func(t *testing.T) {
		prev := &Occupancy{Rows: 1, Cols: 1, Cells: []bool{false}}
		cur := Occupancy{Rows: 2, Cols: 1, Cells: []bool{false, false}}
		assert.True(t, Vacated(prev, cur))
	})
}

func TestSingleBlockOccupancy(t *testing.T) {
	t.Parallel()

	band := types.DistanceBand{Near: 1500, Far: 2000}
	f := makeFrame(640, 480, 0)
	paintBlock(f, 0, 0, 80, 80, 1750)

	o := Occupy(Classify(f, band).Coarse, OccupancyThreshold)
	require.Equal(t, 6, o.Rows)
	require.Equal(t, 8, o.Cols)
	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			assert.Equal(t, r == 0 && c == 0, o.At(r, c), "cell (%d,%d)", r, c)
		}
	}
}
