// Command photoboard-combine stitches the left half of one snapshot to the
// right half of another.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"photoboard-go/internal/logging"
	"photoboard-go/internal/output"
	"photoboard-go/internal/types"
)

func main() {
	app := &cli.App{
		Name:  "photoboard-combine",
		Usage: "combine two snapshots side by side",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "left",
				Value:   "photoboard-image-COLOR1.png",
				EnvVars: []string{"PHOTOBOARD_COMBINE_LEFT"},
				Usage:   "image whose left half is kept",
			},
			&cli.StringFlag{
				Name:    "right",
				Value:   "photoboard-image-COLOR2.png",
				EnvVars: []string{"PHOTOBOARD_COMBINE_RIGHT"},
				Usage:   "image whose right half is kept",
			},
			&cli.StringFlag{
				Name:    "out",
				Value:   output.SnapshotName(types.StreamColor),
				EnvVars: []string{"PHOTOBOARD_COMBINE_OUT"},
				Usage:   "combined image `FILE`",
			},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			logger, err := logging.New("photoboard-combine", c.Bool("debug"))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := output.CombineFiles(c.String("left"), c.String("right"), c.String("out")); err != nil {
				logger.Errorw("combine failed", "error", err)
				return err
			}
			logger.Infof("wrote %s", c.String("out"))
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
