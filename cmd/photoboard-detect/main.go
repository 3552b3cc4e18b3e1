// Command photoboard-detect classifies a single depth frame and writes the
// coarse occupancy map to a text file.
package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"photoboard-go/internal/board"
	"photoboard-go/internal/config"
	"photoboard-go/internal/device"
	_ "photoboard-go/internal/device/realsense"
	"photoboard-go/internal/logging"
	"photoboard-go/internal/render"
	_ "photoboard-go/internal/replay"
	_ "photoboard-go/internal/simulator"
)

func main() {
	app := &cli.App{
		Name:   "photoboard-detect",
		Usage:  "write the occupancy map of one depth frame",
		Flags:  config.Flags(config.DefaultDetect()),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) (err error) {
	cfg, err := config.FromContext(c)
	logger, lerr := logging.New("photoboard-detect", cfg.Debug)
	if lerr != nil {
		return lerr
	}
	defer func() {
		if err != nil {
			logger.Errorw("detect failed", device.ErrorFields(err)...)
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

	b, err := board.Setup(dev, cfg, render.NewConsole(os.Stdout), board.Options{}, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, b.Stop()) }()

	if err := b.WarmUp(ctx, cfg.WarmupFrames); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	path := cfg.OccupancyFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.OutputDir, path)
	}
	if _, err := b.Detect(ctx, path); err != nil {
		return err
	}
	logger.Infof("occupancy map written to %s", path)
	return nil
}
