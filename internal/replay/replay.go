// Package replay plays a recorded frame log back as a depth camera.
package replay

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"photoboard-go/internal/device"
	"photoboard-go/internal/framelog"
	"photoboard-go/internal/types"
)

func init() {
	device.Register("replay", func(opts device.Options) (device.Context, error) {
		return Open(opts.Path, opts.Loop, opts.FPS)
	})
}

type Context struct {
	dev *Device
}

// Open reads the first record of the log to learn its streams and depth scale.
func Open(path string, loop bool, fps float64) (*Context, error) {
	if path == "" {
		return nil, errors.New("replay source needs a frame log path")
	}
	r, err := framelog.Open(path)
	if err != nil {
		return nil, device.Failed("open_log", path, err)
	}
	first, err := r.Next()
	if err != nil {
		_ = r.Close()
		if err == io.EOF {
			return &Context{}, nil
		}
		return nil, device.Failed("read_log", path, err)
	}
	return &Context{dev: &Device{
		path:    path,
		r:       r,
		loop:    loop,
		fps:     fps,
		pending: &first,
		enabled: make(map[types.Stream]bool),
	}}, nil
}

// DeviceCount is zero for an empty log.
func (c *Context) DeviceCount() (int, error) {
	if c.dev == nil {
		return 0, nil
	}
	return 1, nil
}

func (c *Context) Device(index int) (device.Device, error) {
	if c.dev == nil || index != 0 {
		return nil, &device.CallError{Func: "get_device", Args: "index", Message: "device index out of range"}
	}
	return c.dev, nil
}

func (c *Context) Close() error {
	if c.dev == nil {
		return nil
	}
	return c.dev.r.Close()
}

type Device struct {
	path    string
	r       *framelog.Reader
	loop    bool
	fps     float64
	pending *framelog.Record
	enabled map[types.Stream]bool
	started bool
	seq     uint64
	last    time.Time
}

func (d *Device) Info() (device.Info, error) {
	info := device.Info{Name: "Frame Log Replay", Serial: d.path, FirmwareVersion: "n/a"}
	if d.pending != nil && d.pending.Session != "" {
		info.Serial = d.pending.Session
	}
	return info, nil
}

func (d *Device) Supports(s types.Stream) (bool, error) {
	if d.pending == nil {
		return false, nil
	}
	_, ok := d.pending.Streams[s]
	return ok, nil
}

// EnableStream accepts a request only when it matches what was recorded.
func (d *Device) EnableStream(cfg device.StreamConfig) error {
	ok, _ := d.Supports(cfg.Stream)
	if !ok {
		return &device.CallError{Func: "enable_stream", Args: "stream:" + cfg.Stream.String(), Message: "stream not in recording"}
	}
	rec := d.pending.Streams[cfg.Stream]
	if !cfg.IsPreset() && (cfg.Width != rec.Intrinsics.Width || cfg.Height != rec.Intrinsics.Height) {
		return &device.CallError{
			Func:    "enable_stream",
			Args:    "stream:" + cfg.Stream.String() + " size:" + types.Intrinsics{Width: cfg.Width, Height: cfg.Height}.String(),
			Message: "recording holds " + rec.Intrinsics.String(),
		}
	}
	if cfg.Format != types.FormatAny && cfg.Format != rec.Format {
		return &device.CallError{Func: "enable_stream", Args: "format:" + cfg.Format.String(), Message: "recording holds " + rec.Format.String()}
	}
	d.enabled[cfg.Stream] = true
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

func (d *Device) DepthScale() (float64, error) {
	if d.pending == nil || !(d.pending.DepthScale > 0) {
		return 0, &device.CallError{Func: "get_depth_scale", Message: "recording has no depth scale"}
	}
	return d.pending.DepthScale, nil
}

func (d *Device) Intrinsics(s types.Stream) (types.Intrinsics, error) {
	if !d.enabled[s] {
		return types.Intrinsics{}, &device.CallError{Func: "get_stream_intrinsics", Args: "stream:" + s.String(), Message: "stream not enabled"}
	}
	return d.pending.Streams[s].Intrinsics, nil
}

// WaitForFrames returns the next recorded frame set. At the end of the log it
// rewinds when looping and otherwise fails like a disconnected camera.
func (d *Device) WaitForFrames(ctx context.Context) (*device.FrameSet, error) {
	if !d.started {
		return nil, &device.CallError{Func: "wait_for_frames", Message: "device not started"}
	}
	if err := d.pace(ctx); err != nil {
		return nil, err
	}

	rec := d.pending
	if d.seq > 0 || rec == nil {
		next, err := d.r.Next()
		if err == io.EOF && d.loop {
			if err := d.r.Rewind(); err != nil {
				return nil, device.Failed("wait_for_frames", d.path, err)
			}
			next, err = d.r.Next()
		}
		if err == io.EOF {
			return nil, &device.CallError{Func: "wait_for_frames", Args: d.path, Message: "end of recording"}
		}
		if err != nil {
			return nil, device.Failed("wait_for_frames", d.path, err)
		}
		rec = &next
	}

	frames := make(map[types.Stream][]byte, len(d.enabled))
	for s := range d.enabled {
		sf, ok := rec.Streams[s]
		if !ok {
			return nil, &device.CallError{Func: "wait_for_frames", Args: "stream:" + s.String(), Message: "record is missing an enabled stream"}
		}
		frames[s] = sf.Data
	}
	fs := device.NewFrameSet(d.seq, frames)
	d.seq++
	return fs, nil
}

func (d *Device) pace(ctx context.Context) error {
	if d.fps <= 0 {
		return ctx.Err()
	}
	interval := time.Duration(float64(time.Second) / d.fps)
	if wait := time.Until(d.last.Add(interval)); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	d.last = time.Now()
	return nil
}
