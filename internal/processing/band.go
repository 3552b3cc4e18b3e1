package processing

import (
	"fmt"
	"math"

	"photoboard-go/internal/types"
)

// Calibrate converts a distance band in meters into raw depth ticks.
// depthScale is meters per tick and must be positive.
func Calibrate(nearMeters, farMeters, depthScale float64) types.DistanceBand {
	if !(depthScale > 0) {
		panic(fmt.Sprintf("processing: depth scale must be positive, got %v", depthScale))
	}
	return types.DistanceBand{
		Near: metersToTicks(nearMeters, depthScale),
		Far:  metersToTicks(farMeters, depthScale),
	}
}

func metersToTicks(meters, depthScale float64) uint16 {
	t := math.Round(meters / depthScale)
	if t <= 0 {
		return 0
	}
	if t >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(t)
}
