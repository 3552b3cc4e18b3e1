package types

import (
	"fmt"
	"strings"
)

type Stream int

const (
	StreamDepth Stream = iota
	StreamColor
	StreamInfrared
	StreamInfrared2
	StreamFisheye
)

// AllStreams lists streams in capability order.
var AllStreams = []Stream{StreamDepth, StreamColor, StreamInfrared, StreamInfrared2, StreamFisheye}

func (s Stream) String() string {
	switch s {
	case StreamDepth:
		return "DEPTH"
	case StreamColor:
		return "COLOR"
	case StreamInfrared:
		return "INFRARED"
	case StreamInfrared2:
		return "INFRARED2"
	case StreamFisheye:
		return "FISHEYE"
	default:
		return fmt.Sprintf("STREAM%d", int(s))
	}
}

// Components is the channel count of the image written for the stream.
// Depth is exported as an RGB visualisation.
func (s Stream) Components() int {
	switch s {
	case StreamDepth, StreamColor:
		return 3
	default:
		return 1
	}
}

func ParseStream(name string) (Stream, error) {
	for _, s := range AllStreams {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stream %q", name)
}

type Format int

const (
	FormatAny Format = iota
	FormatZ16
	FormatRGB8
	FormatY8
)

func (f Format) String() string {
	switch f {
	case FormatZ16:
		return "z16"
	case FormatRGB8:
		return "rgb8"
	case FormatY8:
		return "y8"
	default:
		return "any"
	}
}

// BytesPerPixel of the raw buffer delivered for the format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatZ16:
		return 2
	case FormatRGB8:
		return 3
	case FormatY8:
		return 1
	default:
		return 0
	}
}

// NativeFormat is the format a stream is captured in when enabled by preset.
func (s Stream) NativeFormat() Format {
	switch s {
	case StreamDepth:
		return FormatZ16
	case StreamColor:
		return FormatRGB8
	default:
		return FormatY8
	}
}

type Intrinsics struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (in Intrinsics) String() string {
	return fmt.Sprintf("%dx%d", in.Width, in.Height)
}
