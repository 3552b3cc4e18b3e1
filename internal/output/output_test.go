package output

import (
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"photoboard-go/internal/processing"
	"photoboard-go/internal/types"
)

func TestDepthGray(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint8(0), DepthGray(0), "no data is black")
	assert.Equal(t, uint8(0), DepthGray(65535))
	assert.Equal(t, uint8(127), DepthGray(32768))
	assert.Equal(t, uint8(255), DepthGray(1))
}

func TestWriteOccupancy(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", DefaultOccupancyFile)
	o := processing.Occupancy{Rows: 2, Cols: 3, Cells: []bool{true, false, false, false, false, true}}
	require.NoError(t, WriteOccupancy(path, o))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "W..\n..W\n", string(got))

	// a second write replaces the first
	require.NoError(t, WriteOccupancy(path, processing.Occupancy{Rows: 1, Cols: 1, Cells: []bool{false}}))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".\n", string(got))
}

func TestWriteSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := types.Intrinsics{Width: 4, Height: 2}

	depth := make([]byte, 4*2*2)
	binary.LittleEndian.PutUint16(depth[0:], 0)
	binary.LittleEndian.PutUint16(depth[2:], 32768)
	binary.LittleEndian.PutUint16(depth[4:], 65535)

	colorBuf := make([]byte, 4*2*3)
	colorBuf[0], colorBuf[1], colorBuf[2] = 10, 20, 30

	ir := make([]byte, 4*2)
	ir[7] = 200

	written, err := WriteSnapshot(dir, []Captured{
		{Stream: types.StreamDepth, Intrinsics: in, Data: depth},
		{Stream: types.StreamColor, Intrinsics: in, Data: colorBuf},
		{Stream: types.StreamInfrared, Intrinsics: in, Data: ir},
	})
	require.NoError(t, err)
	require.Len(t, written, 3)
	assert.Equal(t, filepath.Join(dir, "photoboard-image-DEPTH.png"), written[0].Path)
	assert.Equal(t, 3, written[0].Components)
	assert.Equal(t, 1, written[2].Components)

	img, err := imaging.Open(written[0].Path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assertRGB(t, img, 0, 0, 0, 0, 0)
	assertRGB(t, img, 1, 0, 127, 127, 127)
	assertRGB(t, img, 2, 0, 0, 0, 0)

	img, err = imaging.Open(written[1].Path)
	require.NoError(t, err)
	assertRGB(t, img, 0, 0, 10, 20, 30)

	img, err = imaging.Open(written[2].Path)
	require.NoError(t, err)
	g := color.GrayModel.Convert(img.At(3, 1)).(color.Gray)
	assert.Equal(t, uint8(200), g.Y)
}

func TestWriteSnapshotRejectsMismatchedBuffers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := types.Intrinsics{Width: 4, Height: 2}
	written, err := WriteSnapshot(dir, []Captured{
		{Stream: types.StreamColor, Intrinsics: in, Data: []byte{1, 2, 3}},
		{Stream: types.StreamInfrared, Intrinsics: in, Data: make([]byte, 8)},
		{Stream: types.StreamInfrared2, Intrinsics: in, Data: make([]byte, 9)},
		{Stream: types.StreamDepth, Intrinsics: in, Data: make([]byte, 4*2*2+2)},
	})
	assert.Len(t, multierr.Errors(err), 3)
	require.Len(t, written, 1)
	assert.Equal(t, types.StreamInfrared, written[0].Stream)
}

func TestStreamImageRejectsOversizeBuffer(t *testing.T) {
	t.Parallel()

	_, err := StreamImage(make([]byte, 640*480), types.Intrinsics{Width: 320, Height: 240}, 1)
	assert.ErrorContains(t, err, "want 76800")
}

func TestCombine(t *testing.T) {
	t.Parallel()

	red := imaging.New(4, 2, color.NRGBA{R: 255, A: 255})
	blue := imaging.New(4, 3, color.NRGBA{B: 255, A: 255})

	out := Combine(red, blue)
	assert.Equal(t, image.Rect(0, 0, 4, 3), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, out.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, out.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, out.NRGBAAt(3, 2))
	// below the shorter left image the canvas stays black
	assert.Equal(t, color.NRGBA{A: 255}, out.NRGBAAt(0, 2))
}

func TestCombineFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	left := filepath.Join(dir, "photoboard-image-COLOR1.png")
	right := filepath.Join(dir, "photoboard-image-COLOR2.png")
	out := filepath.Join(dir, "photoboard-image-COLOR.png")
	require.NoError(t, imaging.Save(imaging.New(6, 2, color.White), left))
	require.NoError(t, imaging.Save(imaging.New(6, 2, color.Black), right))

	require.NoError(t, CombineFiles(left, right, out))
	img, err := imaging.Open(out)
	require.NoError(t, err)
	assertRGB(t, img, 2, 1, 255, 255, 255)
	assertRGB(t, img, 3, 1, 0, 0, 0)

	assert.Error(t, CombineFiles(filepath.Join(dir, "missing.png"), right, out))
}

func assertRGB(t *testing.T, img image.Image, x, y int, r, g, b uint8) {
	t.Helper()
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	assert.Equal(t, [3]uint8{r, g, b}, [3]uint8{c.R, c.G, c.B}, "pixel (%d,%d)", x, y)
}
