package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("ERROR"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString(" warning "))
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("whatever"))
}

func TestNew(t *testing.T) {
	logger, err := New("warn", "prod")
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
