package config

import (
	"strings"

	"github.com/urfave/cli/v2"
)

const envPrefix = "PHOTOBOARD_"

const (
	FlagSource         = "source"
	FlagReplay         = "replay"
	FlagReplayLoop     = "replay-loop"
	FlagSourceFPS      = "source-fps"
	FlagWidth          = "width"
	FlagHeight         = "height"
	FlagFPS            = "fps"
	FlagNear           = "near"
	FlagFar            = "far"
	FlagWarmup         = "warmup"
	FlagOutputDir      = "output-dir"
	FlagOccupancyFile  = "occupancy-file"
	FlagRecord         = "record"
	FlagRecordDir      = "record-dir"
	FlagRecordCompress = "record-compress"
	FlagDebug          = "debug"
)

func env(flag string) []string {
	return []string{envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))}
}

// Flags returns the command-line surface shared by the board programs, with
// defaults taken from def. Every flag can also be set from PHOTOBOARD_<NAME>.
func Flags(def AppConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagSource, Value: def.Source, EnvVars: env(FlagSource), Usage: "frame source: realsense, sim or replay"},
		&cli.StringFlag{Name: FlagReplay, Value: def.ReplayPath, EnvVars: env(FlagReplay), Usage: "frame log `FILE` read by the replay source"},
		&cli.BoolFlag{Name: FlagReplayLoop, Value: def.ReplayLoop, EnvVars: env(FlagReplayLoop), Usage: "restart the replay at end of file"},
		&cli.Float64Flag{Name: FlagSourceFPS, Value: def.SourceFPS, EnvVars: env(FlagSourceFPS), Usage: "pace sim and replay frames, 0 for as fast as possible"},
		&cli.IntFlag{Name: FlagWidth, Value: def.DepthWidth, EnvVars: env(FlagWidth), Usage: "depth stream width"},
		&cli.IntFlag{Name: FlagHeight, Value: def.DepthHeight, EnvVars: env(FlagHeight), Usage: "depth stream height"},
		&cli.IntFlag{Name: FlagFPS, Value: def.DepthFPS, EnvVars: env(FlagFPS), Usage: "depth stream frame rate"},
		&cli.Float64Flag{Name: FlagNear, Value: def.NearMeters, EnvVars: env(FlagNear), Usage: "near edge of the distance band in meters"},
		&cli.Float64Flag{Name: FlagFar, Value: def.FarMeters, EnvVars: env(FlagFar), Usage: "far edge of the distance band in meters"},
		&cli.IntFlag{Name: FlagWarmup, Value: def.WarmupFrames, EnvVars: env(FlagWarmup), Usage: "frames discarded before classification starts"},
		&cli.StringFlag{Name: FlagOutputDir, Value: def.OutputDir, EnvVars: env(FlagOutputDir), Usage: "directory for snapshot images"},
		&cli.StringFlag{Name: FlagOccupancyFile, Value: def.OccupancyFile, EnvVars: env(FlagOccupancyFile), Usage: "occupancy map written by detect"},
		&cli.BoolFlag{Name: FlagRecord, Value: def.RecordEnabled, EnvVars: env(FlagRecord), Usage: "record every frame set to a frame log"},
		&cli.StringFlag{Name: FlagRecordDir, Value: def.RecordDir, EnvVars: env(FlagRecordDir), Usage: "directory for frame logs"},
		&cli.BoolFlag{Name: FlagRecordCompress, Value: def.RecordCompress, EnvVars: env(FlagRecordCompress), Usage: "zstd-compress recorded frames"},
		&cli.BoolFlag{Name: FlagDebug, Value: def.Debug, EnvVars: env(FlagDebug), Usage: "enable debug logging"},
	}
}

// FromContext reads the flags registered by Flags and validates the result.
func FromContext(c *cli.Context) (AppConfig, error) {
	cfg := AppConfig{
		Source:         c.String(FlagSource),
		ReplayPath:     c.String(FlagReplay),
		ReplayLoop:     c.Bool(FlagReplayLoop),
		SourceFPS:      c.Float64(FlagSourceFPS),
		DepthWidth:     c.Int(FlagWidth),
		DepthHeight:    c.Int(FlagHeight),
		DepthFPS:       c.Int(FlagFPS),
		NearMeters:     c.Float64(FlagNear),
		FarMeters:      c.Float64(FlagFar),
		WarmupFrames:   c.Int(FlagWarmup),
		OutputDir:      c.String(FlagOutputDir),
		OccupancyFile:  c.String(FlagOccupancyFile),
		RecordEnabled:  c.Bool(FlagRecord),
		RecordDir:      c.String(FlagRecordDir),
		RecordCompress: c.Bool(FlagRecordCompress),
		Debug:          c.Bool(FlagDebug),
	}
	return cfg, cfg.Validate()
}
