// Package compression wraps frame-log payload codecs.
package compression

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const Zstd = "zstd"

var (
	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
)

func encoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		enc, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	})
	return enc, encErr
}

func decoder() (*zstd.Decoder, error) {
	decOnce.Do(func() {
		dec, decErr = zstd.NewReader(nil)
	})
	return dec, decErr
}

// Compress encodes a typed-array payload. elemSize is recorded by callers
// next to the payload and only validated here.
func Compress(raw []byte, algorithm string, elemSize int) ([]byte, error) {
	if err := checkAlgorithm(algorithm); err != nil {
		return nil, err
	}
	if elemSize <= 0 {
		return nil, fmt.Errorf("invalid element size %d", elemSize)
	}
	e, err := encoder()
	if err != nil {
		return nil, err
	}
	return e.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func Decompress(encoded []byte, algorithm string, elemSize int) ([]byte, error) {
	if err := checkAlgorithm(algorithm); err != nil {
		return nil, err
	}
	if elemSize <= 0 {
		return nil, fmt.Errorf("invalid element size %d", elemSize)
	}
	if len(encoded) == 0 {
		return []byte{}, nil
	}
	d, err := decoder()
	if err != nil {
		return nil, err
	}
	out, err := d.DecodeAll(encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if len(out)%elemSize != 0 {
		return nil, fmt.Errorf("decompressed size %d is not a multiple of element size %d", len(out), elemSize)
	}
	return out, nil
}

func checkAlgorithm(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case Zstd, "zst":
		return nil
	default:
		return fmt.Errorf("unsupported compression algorithm %q", value)
	}
}
