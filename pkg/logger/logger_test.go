package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "debug", Encoding: "console", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(Config{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestGetWithoutInitIsNop(t *testing.T) {
	Set(nil)
	logger := Get()
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
	assert.NotNil(t, OrNop(nil))
}

func TestInitReplacesLogger(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	require.NoError(t, Init(Config{Level: "warn", OutputPaths: []string{"stderr"}}))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.Error(t, Init(Config{Level: "nope"}))
	_ = Sync()
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := NewContext(context.Background(), base)
	ctx = WithTable(ctx, "people")
	ctx = WithOperation(ctx, "export")

	FromContext(ctx).Info("exported")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "exported", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "people", fields["table"])
	assert.Equal(t, "export", fields["operation"])
}
