package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("test", false)
	require.NoError(t, err)
	assert.False(t, logger.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Desugar().Core().Enabled(zapcore.InfoLevel))

	debug, err := New("test", true)
	require.NoError(t, err)
	assert.True(t, debug.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.Infof("dropped %d", 1)
	assert.False(t, logger.Desugar().Core().Enabled(zapcore.ErrorLevel))
}
