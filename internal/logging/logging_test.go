package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":    zapcore.DebugLevel,
		"DEBUG":    zapcore.DebugLevel,
		"info":     zapcore.InfoLevel,
		"Warning":  zapcore.WarnLevel,
		"warn":     zapcore.WarnLevel,
		"ERROR":    zapcore.ErrorLevel,
		"critical": zapcore.FatalLevel,
		"":         zapcore.InfoLevel,
		"verbose":  zapcore.InfoLevel,
	}
	for input, expected := range tests {
		assert.Equal(t, expected, ParseLevel(input), "input: %q", input)
	}
}

func TestDebugOverridesLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Options{Debug: true, Level: "error"}.level())
	assert.Equal(t, zapcore.ErrorLevel, Options{Level: "error"}.level())
}

func TestNew(t *testing.T) {
	logger, flush, err := New(Options{Level: "info"})
	require.NoError(t, err)
	defer flush()

	assert.True(t, logger.Enabled())
	assert.False(t, logger.V(1).Enabled())

	logger, flush, err = New(Options{Debug: true})
	require.NoError(t, err)
	defer flush()
	assert.True(t, logger.V(1).Enabled())
}

func TestNewLoggerWithBuild(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	NewLoggerWithBuild(zap.New(core), "v1.2.3").Info("hello")
	NewLoggerWithBuild(zap.New(core), "").Info("no build")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "v1.2.3", entries[0].ContextMap()["serviceBuild"])
	assert.NotContains(t, entries[1].ContextMap(), "serviceBuild")
}
