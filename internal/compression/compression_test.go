package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0x10, 0x27, 0x00, 0x00}, 4096)

	encoded, err := Compress(raw, "zstd", 2)
	require.NoError(t, err)
	assert.Less(t, len(encoded), len(raw))

	decoded, err := Decompress(encoded, "ZSTD", 2)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Decompress([]byte{1, 2, 3}, "bslz4", 2)
	assert.ErrorContains(t, err, "unsupported compression algorithm")

	_, err = Compress([]byte{1, 2}, "zstd", 0)
	assert.ErrorContains(t, err, "invalid element size")
}

func TestElementSizeMismatch(t *testing.T) {
	encoded, err := Compress([]byte{1, 2, 3}, Zstd, 1)
	require.NoError(t, err)

	_, err = Decompress(encoded, Zstd, 2)
	assert.Error(t, err)
}
