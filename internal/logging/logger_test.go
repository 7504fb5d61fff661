package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with defaults when config is nil", func(t *testing.T) {
		logger, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "xml"

		_, err := New(cfg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "format must be")
	})

	t.Run("console format is accepted", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "console"

		logger, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("respects configured level", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Level = zapcore.WarnLevel

		logger, err := New(cfg)
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	tl.Info("dispatch complete")

	tl.AssertLogged(t, zapcore.InfoLevel, "dispatch complete")
	assert.Len(t, tl.All(), 1)
}
