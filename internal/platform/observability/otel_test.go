package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, LogLevel(" warning "))
	assert.Equal(t, slog.LevelError, LogLevel("error"))
	assert.Equal(t, slog.LevelInfo, LogLevel(""))
	assert.Equal(t, slog.LevelInfo, LogLevel("verbose"))
}

func TestDiscardProvidesNoopInstruments(t *testing.T) {
	instruments := Discard()
	require.NotNil(t, instruments.Logger)

	counter, err := instruments.Meter("test").Int64Counter("orders.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	_, span := instruments.Tracer("test").Start(context.Background(), "span")
	span.End()
}
