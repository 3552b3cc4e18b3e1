//go:build !realsense

package realsense

import (
	"github.com/pkg/errors"

	"photoboard-go/internal/device"
)

func init() {
	device.Register("realsense", func(device.Options) (device.Context, error) {
		return nil, errors.New("realsense support not enabled; build with -tags realsense")
	})
}
