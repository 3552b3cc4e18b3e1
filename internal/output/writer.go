package output

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"photoboard-go/internal/processing"
	"photoboard-go/internal/render"
)

// DefaultOccupancyFile is where the detect program leaves its map.
const DefaultOccupancyFile = "photoboard.txt"

// WriteOccupancy writes the coarse map as W/. rows, replacing any previous file.
func WriteOccupancy(path string, o processing.Occupancy) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create occupancy dir")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create occupancy file")
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if _, err := f.WriteString(render.Occupancy(o)); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
