// Package simulator provides a synthetic depth camera: a back wall with a
// box that walks in and out of view.
package simulator

import (
	"context"
	"encoding/binary"
	"math"
	"math/rand"
	"time"

	"photoboard-go/internal/device"
	"photoboard-go/internal/types"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 480
	// DepthScale matches the 1 mm tick of common structured-light sensors.
	DepthScale = 0.001

	wallTicks   = 3200
	subjectMM   = 1750
	walkPeriod  = 120
	subjectSize = 160
)

func init() {
	device.Register("sim", func(opts device.Options) (device.Context, error) {
		return NewContext(opts.FPS), nil
	})
}

type Context struct {
	dev *Device
}

// NewContext returns a context with a single simulated device. fps paces
// WaitForFrames; zero returns frames as fast as they are requested.
func NewContext(fps float64) *Context {
	return &Context{dev: NewDevice(fps, time.Now().UnixNano())}
}

func (c *Context) DeviceCount() (int, error) { return 1, nil }

func (c *Context) Device(index int) (device.Device, error) {
	if index != 0 {
		return nil, &device.CallError{Func: "get_device", Args: "index", Message: "device index out of range"}
	}
	return c.dev, nil
}

func (c *Context) Close() error { return nil }

type Device struct {
	fps     float64
	rng     *rand.Rand
	enabled map[types.Stream]types.Intrinsics
	started bool
	seq     uint64
	last    time.Time
	depth   []uint16
}

func NewDevice(fps float64, seed int64) *Device {
	return &Device{
		fps:     fps,
		rng:     rand.New(rand.NewSource(seed)),
		enabled: make(map[types.Stream]types.Intrinsics),
	}
}

func (d *Device) Info() (device.Info, error) {
	return device.Info{Name: "Simulated Depth Camera", Serial: "SIM-0001", FirmwareVersion: "0.0.0"}, nil
}

func (d *Device) Supports(s types.Stream) (bool, error) {
	return s == types.StreamDepth || s == types.StreamColor || s == types.StreamInfrared, nil
}

func (d *Device) EnableStream(cfg device.StreamConfig) error {
	ok, _ := d.Supports(cfg.Stream)
	if !ok {
		return &device.CallError{Func: "enable_stream", Args: "stream:" + cfg.Stream.String(), Message: "stream not supported"}
	}
	if d.started {
		return &device.CallError{Func: "enable_stream", Args: "stream:" + cfg.Stream.String(), Message: "device is streaming"}
	}
	if cfg.Format != types.FormatAny && cfg.Format != cfg.Stream.NativeFormat() {
		return &device.CallError{Func: "enable_stream", Args: "format:" + cfg.Format.String(), Message: "format not supported"}
	}
	in := types.Intrinsics{Width: cfg.Width, Height: cfg.Height}
	if cfg.IsPreset() {
		in = types.Intrinsics{Width: DefaultWidth, Height: DefaultHeight}
	}
	d.enabled[cfg.Stream] = in
	return nil
}

func (d *Device) Start() error {
	if len(d.enabled) == 0 {
		return &device.CallError{Func: "start", Message: "no streams enabled"}
	}
	d.started = true
	return nil
}

func (d *Device) Stop() error {
	d.started = false
	return nil
}

func (d *Device) DepthScale() (float64, error) { return DepthScale, nil }

func (d *Device) Intrinsics(s types.Stream) (types.Intrinsics, error) {
	in, ok := d.enabled[s]
	if !ok {
		return types.Intrinsics{}, &device.CallError{Func: "get_stream_intrinsics", Args: "stream:" + s.String(), Message: "stream not enabled"}
	}
	return in, nil
}

func (d *Device) WaitForFrames(ctx context.Context) (*device.FrameSet, error) {
	if !d.started {
		return nil, &device.CallError{Func: "wait_for_frames", Message: "device not started"}
	}
	if d.fps > 0 {
		interval := time.Duration(float64(time.Second) / d.fps)
		if wait := time.Until(d.last.Add(interval)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		d.last = time.Now()
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	frames := make(map[types.Stream][]byte, len(d.enabled))
	for s, in := range d.enabled {
		switch s {
		case types.StreamDepth:
			frames[s] = d.renderDepth(in)
		case types.StreamColor:
			frames[s] = d.renderColor(in)
		default:
			frames[s] = d.renderInfrared(in)
		}
	}
	fs := device.NewFrameSet(d.seq, frames)
	d.seq++
	return fs, nil
}

// subject returns the box origin for the current frame and whether it is in view.
func (d *Device) subject(in types.Intrinsics) (int, int, bool) {
	phase := float64(d.seq%walkPeriod) / walkPeriod
	// in view for the middle two thirds of each period
	if phase < 1.0/6 || phase > 5.0/6 {
		return 0, 0, false
	}
	span := in.Width - subjectSize
	x := int(float64(span) * (phase - 1.0/6) * 1.5)
	y := (in.Height - subjectSize) / 2
	return x, y, true
}

func (d *Device) renderDepth(in types.Intrinsics) []byte {
	n := in.Width * in.Height
	if len(d.depth) != n {
		d.depth = make([]uint16, n)
	}
	sx, sy, visible := d.subject(in)
	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			v := float64(wallTicks) + d.rng.NormFloat64()*math.Sqrt(wallTicks)
			if visible && x >= sx && x < sx+subjectSize && y >= sy && y < sy+subjectSize {
				v = subjectMM + d.rng.NormFloat64()*8
			}
			// sparse dropouts read as no return
			if d.rng.Intn(200) == 0 {
				v = 0
			}
			d.depth[y*in.Width+x] = clampTick(v)
		}
	}
	out := make([]byte, n*2)
	for i, v := range d.depth {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func (d *Device) renderColor(in types.Intrinsics) []byte {
	out := make([]byte, in.Width*in.Height*3)
	sx, sy, visible := d.subject(in)
	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			o := (y*in.Width + x) * 3
			out[o+0] = uint8(x * 255 / max(in.Width-1, 1))
			out[o+1] = uint8(y * 255 / max(in.Height-1, 1))
			out[o+2] = 96
			if visible && x >= sx && x < sx+subjectSize && y >= sy && y < sy+subjectSize {
				out[o+0], out[o+1], out[o+2] = 230, 60, 40
			}
		}
	}
	return out
}

func (d *Device) renderInfrared(in types.Intrinsics) []byte {
	out := make([]byte, in.Width*in.Height)
	for i := range out {
		out[i] = uint8(64 + d.rng.Intn(32))
	}
	return out
}

func clampTick(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
