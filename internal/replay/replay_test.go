package replay

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoboard-go/internal/device"
	"photoboard-go/internal/framelog"
	"photoboard-go/internal/types"
)

func writeLog(t *testing.T, frames int) string {
	t.Helper()
	w, err := framelog.Create(t.TempDir(), "frames", true)
	require.NoError(t, err)
	for i := 0; i < frames; i++ {
		depth := make([]byte, 8*4*2)
		for p := 0; p < 8*4; p++ {
			binary.LittleEndian.PutUint16(depth[p*2:], uint16(1000+i))
		}
		require.NoError(t, w.Append(framelog.Record{
			DepthScale: 0.001,
			Streams: map[types.Stream]framelog.StreamFrame{
				types.StreamDepth: {
					Intrinsics: types.Intrinsics{Width: 8, Height: 4},
					Format:     types.FormatZ16,
					Data:       depth,
				},
			},
		}))
	}
	require.NoError(t, w.Close())
	return w.Path()
}

func firstDepth(t *testing.T, fs *device.FrameSet) uint16 {
	t.Helper()
	raw, err := fs.Data(types.StreamDepth)
	require.NoError(t, err)
	return binary.LittleEndian.Uint16(raw)
}

func TestReplayPlaysInOrderThenFails(t *testing.T) {
	c, err := Open(writeLog(t, 3), false, 0)
	require.NoError(t, err)
	defer c.Close()

	dev, n, err := device.First(c)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := dev.Supports(types.StreamColor)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, dev.EnableStream(device.StreamConfig{
		Stream: types.StreamDepth, Width: 8, Height: 4, Format: types.FormatZ16, FPS: 30,
	}))
	require.NoError(t, dev.Start())

	scale, err := dev.DepthScale()
	require.NoError(t, err)
	assert.Equal(t, 0.001, scale)

	in, err := dev.Intrinsics(types.StreamDepth)
	require.NoError(t, err)
	assert.Equal(t, types.Intrinsics{Width: 8, Height: 4}, in)

	for i := 0; i < 3; i++ {
		fs, err := dev.WaitForFrames(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint16(1000+i), firstDepth(t, fs))
	}

	_, err = dev.WaitForFrames(context.Background())
	var ce *device.CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "end of recording", ce.Message)
}

func TestReplayLoops(t *testing.T) {
	c, err := Open(writeLog(t, 2), true, 0)
	require.NoError(t, err)
	defer c.Close()

	dev, err := c.Device(0)
	require.NoError(t, err)
	require.NoError(t, dev.EnableStream(device.Preset(types.StreamDepth)))
	require.NoError(t, dev.Start())

	var got []uint16
	for i := 0; i < 5; i++ {
		fs, err := dev.WaitForFrames(context.Background())
		require.NoError(t, err)
		got = append(got, firstDepth(t, fs))
	}
	assert.Equal(t, []uint16{1000, 1001, 1000, 1001, 1000}, got)
}

func TestReplayRejectsMismatchedRequest(t *testing.T) {
	c, err := Open(writeLog(t, 1), false, 0)
	require.NoError(t, err)
	defer c.Close()

	dev, err := c.Device(0)
	require.NoError(t, err)
	err = dev.EnableStream(device.StreamConfig{Stream: types.StreamDepth, Width: 640, Height: 480, Format: types.FormatZ16, FPS: 30})
	assert.True(t, device.IsCallError(err))
}

func TestEmptyLogHasNoDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, []byte(framelog.Magic), 0o644))

	c, err := Open(path, false, 0)
	require.NoError(t, err)
	_, _, err = device.First(c)
	assert.ErrorIs(t, err, device.ErrNoDeviceFound)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := device.Open("replay", device.Options{Path: filepath.Join(t.TempDir(), "nope.bin")})
	assert.True(t, device.IsCallError(err))
}
