package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type AppConfig struct {
	Source         string
	ReplayPath     string
	ReplayLoop     bool
	SourceFPS      float64
	DepthWidth     int
	DepthHeight    int
	DepthFPS       int
	NearMeters     float64
	FarMeters      float64
	WarmupFrames   int
	OutputDir      string
	OccupancyFile  string
	RecordEnabled  bool
	RecordDir      string
	RecordCompress bool
	Debug          bool
}

func base() AppConfig {
	return AppConfig{
		Source:        "sim",
		SourceFPS:     30,
		DepthWidth:    640,
		DepthHeight:   480,
		DepthFPS:      30,
		WarmupFrames:  30,
		OutputDir:     ".",
		OccupancyFile: "photoboard.txt",
		RecordDir:     "framelog",
	}
}

// DefaultBoard is the snapshot loop: subjects between 1.5 m and 2 m.
func DefaultBoard() AppConfig {
	cfg := base()
	cfg.NearMeters = 1.5
	cfg.FarMeters = 2.0
	return cfg
}

// DefaultDetect is the single-shot detector: 1 m to 3 m.
func DefaultDetect() AppConfig {
	cfg := base()
	cfg.NearMeters = 1.0
	cfg.FarMeters = 3.0
	return cfg
}

func (c AppConfig) Validate() error {
	var err error
	if c.Source == "" {
		err = multierr.Append(err, errors.New("source must be set"))
	}
	if c.Source == "replay" && c.ReplayPath == "" {
		err = multierr.Append(err, errors.New("replay source needs --replay"))
	}
	if c.NearMeters < 0 {
		err = multierr.Append(err, errors.Errorf("near distance %v must not be negative", c.NearMeters))
	}
	if c.FarMeters <= c.NearMeters {
		err = multierr.Append(err, errors.Errorf("far distance %v must exceed near distance %v", c.FarMeters, c.NearMeters))
	}
	if c.DepthWidth <= 0 || c.DepthHeight <= 0 {
		err = multierr.Append(err, errors.Errorf("depth resolution %dx%d is invalid", c.DepthWidth, c.DepthHeight))
	}
	if c.DepthFPS <= 0 {
		err = multierr.Append(err, errors.Errorf("depth frame rate %d is invalid", c.DepthFPS))
	}
	if c.WarmupFrames < 0 {
		err = multierr.Append(err, errors.Errorf("warm-up frames %d must not be negative", c.WarmupFrames))
	}
	if c.SourceFPS < 0 {
		err = multierr.Append(err, errors.Errorf("source fps %v must not be negative", c.SourceFPS))
	}
	return err
}
