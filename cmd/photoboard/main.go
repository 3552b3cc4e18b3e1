// Command photoboard watches a depth camera and exports a PNG of every
// enabled stream whenever someone leaves the 1.5 m - 2 m band.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"photoboard-go/internal/board"
	"photoboard-go/internal/config"
	"photoboard-go/internal/device"
	_ "photoboard-go/internal/device/realsense"
	"photoboard-go/internal/framelog"
	"photoboard-go/internal/logging"
	"photoboard-go/internal/render"
	_ "photoboard-go/internal/replay"
	_ "photoboard-go/internal/simulator"
)

func main() {
	app := &cli.App{
		Name:   "photoboard",
		Usage:  "export snapshots when a subject leaves the distance band",
		Flags:  config.Flags(config.DefaultBoard()),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) (err error) {
	cfg, err := config.FromContext(c)
	logger, lerr := logging.New("photoboard", cfg.Debug)
	if lerr != nil {
		return lerr
	}
	defer func() {
		if err != nil {
			logger.Errorw("photoboard failed", device.ErrorFields(err)...)
		}
		_ = logger.Sync()
	}()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, dev, err := board.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, src.Close()) }()

	opts := board.Options{AllStreams: true}
	if cfg.RecordEnabled {
		rec, rerr := framelog.Create(cfg.RecordDir, "photoboard", cfg.RecordCompress)
		if rerr != nil {
			return rerr
		}
		logger.Infof("recording frames to %s (session %s)", rec.Path(), rec.Session())
		defer func() { err = multierr.Append(err, rec.Close()) }()
		opts.Recorder = rec
	}

	b, err := board.Setup(dev, cfg, render.NewConsole(os.Stdout), opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		board.LogStats(logger, b.Stats())
		if serr := b.Stop(); serr != nil && ctx.Err() == nil {
			err = multierr.Append(err, serr)
		}
	}()

	return loop(ctx, b, cfg, logger)
}

func loop(ctx context.Context, b *board.Board, cfg config.AppConfig, logger *zap.SugaredLogger) error {
	if err := b.WarmUp(ctx, cfg.WarmupFrames); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	logger.Infof("watching %.2fm-%.2fm with streams %v, snapshots go to %s", cfg.NearMeters, cfg.FarMeters, b.Streams(), cfg.OutputDir)
	return b.Run(ctx)
}
