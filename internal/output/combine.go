package output

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Combine pastes the left half of left and the right half of right onto a
// black canvas sized to the larger of the two.
func Combine(left, right image.Image) *image.NRGBA {
	lb, rb := left.Bounds(), right.Bounds()
	width := max(lb.Dx(), rb.Dx())
	height := max(lb.Dy(), rb.Dy())
	canvas := imaging.New(width, height, color.Black)

	lw := lb.Dx() / 2
	leftHalf := imaging.Crop(left, image.Rect(lb.Min.X, lb.Min.Y, lb.Min.X+lw, lb.Max.Y))
	canvas = imaging.Paste(canvas, leftHalf, image.Pt(0, 0))

	rw := rb.Dx() / 2
	rightHalf := imaging.Crop(right, image.Rect(rb.Min.X+rw, rb.Min.Y, rb.Max.X, rb.Max.Y))
	canvas = imaging.Paste(canvas, rightHalf, image.Pt(rw, 0))
	return canvas
}

// CombineFiles reads two snapshots and writes their combination to out.
func CombineFiles(leftPath, rightPath, out string) error {
	left, err := imaging.Open(leftPath)
	if err != nil {
		return errors.Wrap(err, "open left image")
	}
	right, err := imaging.Open(rightPath)
	if err != nil {
		return errors.Wrap(err, "open right image")
	}
	if err := imaging.Save(Combine(left, right), out); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}
	return nil
}
