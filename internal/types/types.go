package types

import (
	"encoding/binary"
	"fmt"
)

// DepthFrame is a row-major view over raw Z16 depth ticks.
type DepthFrame struct {
	Width  int
	Height int
	Data   []uint16
}

// NewDepthFrame decodes a little-endian Z16 buffer. The buffer must hold
// exactly width*height samples.
func NewDepthFrame(raw []byte, in Intrinsics) (DepthFrame, error) {
	if in.Width <= 0 || in.Height <= 0 {
		return DepthFrame{}, fmt.Errorf("invalid depth intrinsics %dx%d", in.Width, in.Height)
	}
	n := in.Width * in.Height
	if len(raw) != n*2 {
		return DepthFrame{}, fmt.Errorf("depth buffer holds %d bytes, want %d for %dx%d", len(raw), n*2, in.Width, in.Height)
	}
	data := make([]uint16, n)
	for i := range data {
		data[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
	}
	return DepthFrame{Width: in.Width, Height: in.Height, Data: data}, nil
}

func (f DepthFrame) At(x, y int) uint16 {
	return f.Data[y*f.Width+x]
}

// DistanceBand holds exclusive raw-tick bounds.
type DistanceBand struct {
	Near uint16
	Far  uint16
}

func (b DistanceBand) Contains(depth uint16) bool {
	return depth > 0 && depth > b.Near && depth < b.Far
}
