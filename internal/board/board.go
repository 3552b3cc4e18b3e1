// Package board runs the photoboard cycle against a depth camera: warm up,
// then classify each depth frame, redraw the console maps and export
// snapshots whenever an occupied cell empties.
package board

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"photoboard-go/internal/config"
	"photoboard-go/internal/device"
	"photoboard-go/internal/framelog"
	"photoboard-go/internal/output"
	"photoboard-go/internal/processing"
	"photoboard-go/internal/render"
	"photoboard-go/internal/types"
)

// Recorder receives every post-warm-up frame set.
type Recorder interface {
	Append(rec framelog.Record) error
}

type Options struct {
	// AllStreams enables every stream the device supports in addition to depth.
	AllStreams bool
	Recorder   Recorder
}

type Board struct {
	log        *zap.SugaredLogger
	dev        device.Device
	console    *render.Console
	cfg        config.AppConfig
	opts       Options
	depthScale float64
	band       types.DistanceBand
	streams    []device.StreamConfig
	intrinsics map[types.Stream]types.Intrinsics
	stats      Stats
}

// Setup enables the streams, starts the device and calibrates the band.
func Setup(dev device.Device, cfg config.AppConfig, console *render.Console, opts Options, logger *zap.SugaredLogger) (*Board, error) {
	info, err := dev.Info()
	if err != nil {
		return nil, err
	}
	logger.Infof("using device 0, an %s", info.Name)
	logger.Infof("    serial number: %s", info.Serial)
	logger.Infof("    firmware version: %s", info.FirmwareVersion)

	b := &Board{
		log:        logger,
		dev:        dev,
		console:    console,
		cfg:        cfg,
		opts:       opts,
		intrinsics: make(map[types.Stream]types.Intrinsics),
	}

	depth := device.StreamConfig{
		Stream: types.StreamDepth,
		Width:  cfg.DepthWidth,
		Height: cfg.DepthHeight,
		Format: types.FormatZ16,
		FPS:    cfg.DepthFPS,
	}
	if err := dev.EnableStream(depth); err != nil {
		return nil, err
	}
	b.streams = append(b.streams, depth)

	if opts.AllStreams {
		for _, s := range types.AllStreams[1:] {
			ok, err := dev.Supports(s)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			preset := device.Preset(s)
			if err := dev.EnableStream(preset); err != nil {
				return nil, err
			}
			b.streams = append(b.streams, preset)
		}
	}

	if err := dev.Start(); err != nil {
		return nil, err
	}

	b.depthScale, err = dev.DepthScale()
	if err != nil {
		return nil, err
	}
	if !(b.depthScale > 0) {
		return nil, &device.CallError{Func: "get_depth_scale", Message: "device reported a non-positive depth scale"}
	}
	b.band = processing.Calibrate(cfg.NearMeters, cfg.FarMeters, b.depthScale)
	logger.Infof("distance band %.2fm-%.2fm is ticks (%d, %d) at %g m/tick",
		cfg.NearMeters, cfg.FarMeters, b.band.Near, b.band.Far, b.depthScale)

	for _, sc := range b.streams {
		in, err := dev.Intrinsics(sc.Stream)
		if err != nil {
			return nil, err
		}
		b.intrinsics[sc.Stream] = in
		logger.Debugf("stream %s enabled at %s", sc.Stream, in)
	}
	return b, nil
}

func (b *Board) Band() types.DistanceBand { return b.band }

func (b *Board) Stats() *Stats { return &b.stats }

// Streams lists the enabled streams, depth first.
func (b *Board) Streams() []types.Stream {
	out := make([]types.Stream, len(b.streams))
	for i, sc := range b.streams {
		out[i] = sc.Stream
	}
	return out
}

// WarmUp discards n frame sets while auto-exposure settles.
func (b *Board) WarmUp(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if _, err := b.dev.WaitForFrames(ctx); err != nil {
			return err
		}
	}
	b.log.Debugf("discarded %d warm-up frames", n)
	return nil
}

// Cycle is everything derived from one acquisition.
type Cycle struct {
	Frames    *device.FrameSet
	Depth     types.DepthFrame
	Grids     processing.Classification
	Occupancy processing.Occupancy
}

// Acquire waits for the next frame set and classifies its depth frame.
func (b *Board) Acquire(ctx context.Context) (*Cycle, error) {
	fs, err := b.dev.WaitForFrames(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.refreshIntrinsics(); err != nil {
		return nil, err
	}
	raw, err := fs.Data(types.StreamDepth)
	if err != nil {
		return nil, err
	}
	frame, err := types.NewDepthFrame(raw, b.intrinsics[types.StreamDepth])
	if err != nil {
		return nil, &device.CallError{Func: "get_frame_data", Args: "stream:DEPTH", Message: err.Error()}
	}
	b.stats.Cycles++
	if b.opts.Recorder != nil {
		if err := b.opts.Recorder.Append(b.record(fs)); err != nil {
			b.stats.RecordErrors++
			b.log.Warnf("frame log append failed: %v", err)
		} else {
			b.stats.Recorded++
		}
	}
	grids := processing.Classify(frame, b.band)
	return &Cycle{
		Frames:    fs,
		Depth:     frame,
		Grids:     grids,
		Occupancy: processing.Occupy(grids.Coarse, processing.OccupancyThreshold),
	}, nil
}

func (b *Board) refreshIntrinsics() error {
	for _, sc := range b.streams {
		in, err := b.dev.Intrinsics(sc.Stream)
		if err != nil {
			return err
		}
		if old := b.intrinsics[sc.Stream]; old != in {
			b.log.Infof("stream %s intrinsics changed from %s to %s", sc.Stream, old, in)
			b.intrinsics[sc.Stream] = in
		}
	}
	return nil
}

func (b *Board) record(fs *device.FrameSet) framelog.Record {
	rec := framelog.Record{
		Timestamp:  time.Now(),
		DepthScale: b.depthScale,
		Streams:    make(map[types.Stream]framelog.StreamFrame, len(b.streams)),
	}
	for _, sc := range b.streams {
		data, err := fs.Data(sc.Stream)
		if err != nil {
			continue
		}
		format := sc.Format
		if format == types.FormatAny {
			format = sc.Stream.NativeFormat()
		}
		rec.Streams[sc.Stream] = framelog.StreamFrame{
			Intrinsics: b.intrinsics[sc.Stream],
			Format:     format,
			Data:       data,
		}
	}
	return rec
}

// Step runs one classify/render/export cycle. prev is the occupancy grid of
// the previous cycle, nil on the first. The returned grid replaces it.
func (b *Board) Step(ctx context.Context, prev *processing.Occupancy) (processing.Occupancy, bool, error) {
	c, err := b.Acquire(ctx)
	if err != nil {
		return processing.Occupancy{}, false, err
	}
	changed := processing.Vacated(prev, c.Occupancy)

	previous := c.Occupancy
	if prev != nil {
		previous = *prev
	}
	if err := b.console.Frame(
		render.Density(c.Grids.Dense),
		render.Occupancy(c.Occupancy),
		"\n"+render.Occupancy(previous),
	); err != nil {
		b.log.Warnf("console write failed: %v", err)
	}

	if changed {
		b.stats.Vacated++
		b.export(c.Frames)
	}
	return c.Occupancy, changed, nil
}

func (b *Board) export(fs *device.FrameSet) {
	captured := make([]output.Captured, 0, len(b.streams))
	for _, s := range fs.Streams() {
		in, ok := b.intrinsics[s]
		if !ok {
			continue
		}
		data, err := fs.Data(s)
		if err != nil {
			b.log.Warnf("snapshot skipped stream %s: %v", s, err)
			continue
		}
		captured = append(captured, output.Captured{Stream: s, Intrinsics: in, Data: data})
	}
	written, err := output.WriteSnapshot(b.cfg.OutputDir, captured)
	for _, w := range written {
		b.log.Infof("writing %s, %d x %d pixels", w.Path, w.Width, w.Height)
	}
	b.stats.SnapshotFiles += uint64(len(written))
	if err != nil {
		b.stats.SnapshotErrors += uint64(len(multierr.Errors(err)))
		b.log.Warnf("snapshot incomplete: %v", err)
	}
	if len(written) > 0 {
		_ = b.console.Println("wrote frames to " + b.cfg.OutputDir)
	}
}

// Run loops until ctx is cancelled or the device fails. Cancellation is a
// clean exit.
func (b *Board) Run(ctx context.Context) error {
	var prev *processing.Occupancy
	for cycle := 0; ; cycle++ {
		cur, changed, err := b.Step(ctx, prev)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if changed {
			b.log.Debugf("cycle %d: occupied cell vacated", cycle)
		}
		prev = &cur
	}
}

// Detect classifies a single frame set, prints the maps and writes the
// coarse occupancy map to path.
func (b *Board) Detect(ctx context.Context, path string) (processing.Occupancy, error) {
	c, err := b.Acquire(ctx)
	if err != nil {
		return processing.Occupancy{}, err
	}
	if err := b.console.Frame(render.Density(c.Grids.Dense), render.Occupancy(c.Occupancy)); err != nil {
		b.log.Warnf("console write failed: %v", err)
	}
	if err := output.WriteOccupancy(path, c.Occupancy); err != nil {
		return c.Occupancy, errors.Wrap(err, "write occupancy map")
	}
	_ = b.console.Println("\nPhoto taken")
	return c.Occupancy, nil
}

// Stop halts streaming.
func (b *Board) Stop() error {
	return b.dev.Stop()
}
