package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		env     string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"production info", "info", "production", zapcore.InfoLevel, zapcore.DebugLevel},
		{"development debug", "debug", "development", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"production warn", "warn", "production", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.env)
			require.NoError(t, err)
			require.NotNil(t, log)

			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.muted))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	log, err := New("loud", "production")
	assert.Error(t, err)
	assert.Nil(t, log)
}
