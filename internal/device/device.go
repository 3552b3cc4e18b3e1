// Package device describes the depth-camera frame source. Concrete sources
// live in sibling packages and register themselves by name.
package device

import (
	"context"

	"photoboard-go/internal/types"
)

type Info struct {
	Name            string
	Serial          string
	FirmwareVersion string
}

// StreamConfig requests a stream. A zero Width, Height or FPS selects the
// source's best-quality preset for that stream.
type StreamConfig struct {
	Stream types.Stream
	Width  int
	Height int
	Format types.Format
	FPS    int
}

// Preset returns a best-quality request for the stream.
func Preset(s types.Stream) StreamConfig {
	return StreamConfig{Stream: s, Format: s.NativeFormat()}
}

func (c StreamConfig) IsPreset() bool {
	return c.Width == 0 || c.Height == 0 || c.FPS == 0
}

// Context owns every connected device.
type Context interface {
	DeviceCount() (int, error)
	Device(index int) (Device, error)
	Close() error
}

// Device is a single camera. Calls are not safe for concurrent use.
type Device interface {
	Info() (Info, error)
	Supports(s types.Stream) (bool, error)
	EnableStream(cfg StreamConfig) error
	Start() error
	Stop() error
	// DepthScale reports meters per raw depth tick.
	DepthScale() (float64, error)
	Intrinsics(s types.Stream) (types.Intrinsics, error)
	// WaitForFrames blocks until a coherent frame set is available. Buffers in
	// the returned set stay valid until the next call.
	WaitForFrames(ctx context.Context) (*FrameSet, error)
}

// FrameSet is one coherent acquisition across all enabled streams.
type FrameSet struct {
	Seq    uint64
	frames map[types.Stream][]byte
}

func NewFrameSet(seq uint64, frames map[types.Stream][]byte) *FrameSet {
	if frames == nil {
		frames = make(map[types.Stream][]byte)
	}
	return &FrameSet{Seq: seq, frames: frames}
}

// Data returns the raw buffer captured for the stream.
func (fs *FrameSet) Data(s types.Stream) ([]byte, error) {
	data, ok := fs.frames[s]
	if !ok {
		return nil, &CallError{Func: "get_frame_data", Args: "stream:" + s.String(), Message: "stream not enabled"}
	}
	return data, nil
}

func (fs *FrameSet) Streams() []types.Stream {
	out := make([]types.Stream, 0, len(fs.frames))
	for _, s := range types.AllStreams {
		if _, ok := fs.frames[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// First returns device 0, or ErrNoDeviceFound when nothing is connected.
func First(c Context) (Device, int, error) {
	n, err := c.DeviceCount()
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return nil, 0, ErrNoDeviceFound
	}
	dev, err := c.Device(0)
	if err != nil {
		return nil, n, err
	}
	return dev, n, nil
}
