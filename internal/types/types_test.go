package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDepthFrame(t *testing.T) {
	in := Intrinsics{Width: 2, Height: 1}

	f, err := NewDepthFrame([]byte{0xe8, 0x03, 0xd0, 0x07}, in)
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), f.At(0, 0))
	assert.Equal(t, uint16(2000), f.At(1, 0))

	_, err = NewDepthFrame([]byte{0xe8, 0x03}, in)
	assert.Error(t, err, "short buffer")

	_, err = NewDepthFrame(make([]byte, 6), in)
	assert.Error(t, err, "oversize buffer")

	_, err = NewDepthFrame(nil, Intrinsics{})
	assert.Error(t, err)
}

func TestNewDepthFrameRejectsLargerSensorBuffer(t *testing.T) {
	_, err := NewDepthFrame(make([]byte, 640*480*2), Intrinsics{Width: 320, Height: 240})
	assert.ErrorContains(t, err, "want 153600")
}

func TestDistanceBandContains(t *testing.T) {
	b := DistanceBand{Near: 100, Far: 300}
	assert.False(t, b.Contains(0))
	assert.False(t, b.Contains(100))
	assert.True(t, b.Contains(299))
	assert.False(t, b.Contains(300))
}
