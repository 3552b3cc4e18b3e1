package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"photoboard-go/internal/types"
)

const snapshotPrefix = "photoboard-image-"

// SnapshotName is the file a stream is exported to, e.g. photoboard-image-DEPTH.png.
func SnapshotName(s types.Stream) string {
	return fmt.Sprintf("%s%s.png", snapshotPrefix, s)
}

// DepthGray maps a raw tick to the inverted grayscale level. Zero means no
// return and is drawn black.
func DepthGray(tick uint16) uint8 {
	if tick == 0 {
		return 0
	}
	v := (uint32(tick)*255 + 65535/2) / 65535
	return uint8(255 - v)
}

// DepthToRGB renders a depth frame as an inverted grayscale RGB image.
func DepthToRGB(frame types.DepthFrame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i, d := range frame.Data {
		g := DepthGray(d)
		o := i * 4
		img.Pix[o+0] = g
		img.Pix[o+1] = g
		img.Pix[o+2] = g
		img.Pix[o+3] = 0xff
	}
	return img
}

// StreamImage wraps a raw captured buffer without converting pixel values.
func StreamImage(data []byte, in types.Intrinsics, components int) (image.Image, error) {
	want := in.Width * in.Height * components
	if len(data) != want {
		return nil, fmt.Errorf("buffer holds %d bytes, want %d for %s x%d", len(data), want, in, components)
	}
	rect := image.Rect(0, 0, in.Width, in.Height)
	switch components {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, data)
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i := 0; i < in.Width*in.Height; i++ {
			img.Pix[i*4+0] = data[i*3+0]
			img.Pix[i*4+1] = data[i*3+1]
			img.Pix[i*4+2] = data[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported component count %d", components)
	}
}

// Captured is one stream's contribution to a snapshot.
type Captured struct {
	Stream     types.Stream
	Intrinsics types.Intrinsics
	Data       []byte
}

// Written describes a file produced by WriteSnapshot.
type Written struct {
	Stream     types.Stream
	Path       string
	Width      int
	Height     int
	Components int
}

// WriteSnapshot writes one PNG per stream into dir, overwriting older files.
// The depth stream is converted to grayscale; the others are written as
// captured. Files that fail are reported in the returned error after every
// stream has been attempted.
func WriteSnapshot(dir string, streams []Captured) ([]Written, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create snapshot dir")
	}

	var (
		written []Written
		failed  error
	)
	for _, c := range streams {
		img, err := snapshotImage(c)
		if err != nil {
			failed = multierr.Append(failed, errors.Wrapf(err, "stream %s", c.Stream))
			continue
		}
		path := filepath.Join(dir, SnapshotName(c.Stream))
		if err := imaging.Save(img, path); err != nil {
			failed = multierr.Append(failed, errors.Wrapf(err, "write %s", path))
			continue
		}
		written = append(written, Written{
			Stream:     c.Stream,
			Path:       path,
			Width:      c.Intrinsics.Width,
			Height:     c.Intrinsics.Height,
			Components: c.Stream.Components(),
		})
	}
	return written, failed
}

func snapshotImage(c Captured) (image.Image, error) {
	if c.Stream == types.StreamDepth {
		frame, err := types.NewDepthFrame(c.Data, c.Intrinsics)
		if err != nil {
			return nil, err
		}
		return DepthToRGB(frame), nil
	}
	return StreamImage(c.Data, c.Intrinsics, c.Stream.Components())
}
