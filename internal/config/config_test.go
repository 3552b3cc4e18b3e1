package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

func TestDefaultsAreValid(t *testing.T) {
	assert.NoError(t, DefaultBoard().Validate())
	assert.NoError(t, DefaultDetect().Validate())

	assert.Equal(t, 1.5, DefaultBoard().NearMeters)
	assert.Equal(t, 3.0, DefaultDetect().FarMeters)
	assert.Equal(t, 30, DefaultBoard().WarmupFrames)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := DefaultBoard()
	cfg.Source = "replay"
	cfg.NearMeters = 2
	cfg.FarMeters = 1
	cfg.DepthWidth = 0
	cfg.WarmupFrames = -1

	err := cfg.Validate()
	assert.Len(t, multierr.Errors(err), 4)
	assert.ErrorContains(t, err, "replay source needs --replay")
	assert.ErrorContains(t, err, "far distance")
}

func parse(t *testing.T, def AppConfig, args ...string) (AppConfig, error) {
	t.Helper()
	var (
		cfg AppConfig
		err error
	)
	app := &cli.App{
		Name:  "test",
		Flags: Flags(def),
		Action: func(c *cli.Context) error {
			cfg, err = FromContext(c)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg, err
}

func TestFlagsDefaults(t *testing.T) {
	cfg, err := parse(t, DefaultDetect())
	require.NoError(t, err)
	assert.Equal(t, DefaultDetect(), cfg)
}

func TestFlagsOverride(t *testing.T) {
	t.Setenv("PHOTOBOARD_FAR", "4.5")
	t.Setenv("PHOTOBOARD_RECORD_COMPRESS", "true")

	cfg, err := parse(t, DefaultBoard(), "--source", "replay", "--replay", "a.bin", "--near", "0.5", "--warmup", "0")
	require.NoError(t, err)
	assert.Equal(t, "replay", cfg.Source)
	assert.Equal(t, "a.bin", cfg.ReplayPath)
	assert.Equal(t, 0.5, cfg.NearMeters)
	assert.Equal(t, 4.5, cfg.FarMeters)
	assert.Equal(t, 0, cfg.WarmupFrames)
	assert.True(t, cfg.RecordCompress)
}

func TestFlagsValidate(t *testing.T) {
	_, err := parse(t, DefaultBoard(), "--near", "3")
	assert.ErrorContains(t, err, "far distance")
}
