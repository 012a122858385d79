package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "default", cfg: DefaultLogConfig()},
		{name: "console", cfg: LogConfig{Level: "debug", Format: "console"}},
		{name: "stderr", cfg: LogConfig{Level: "warn", Format: "json", Output: "stderr"}},
		{name: "bad level", cfg: LogConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: LogConfig{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestLogger_WithContext(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.WithContext(ctx).Info("hello")
	logger.WithContext(context.Background()).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NopLogger()
	logger.Info("discarded", String("k", "v"))
	assert.NotNil(t, logger.With(Int("n", 1)))
	assert.NoError(t, logger.Sync())
}

func TestRouteCell(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RouteFromContext(context.Background()))
	SetRoute(context.Background(), "ignored")

	ctx := ContextWithRouteCell(context.Background())
	assert.Empty(t, RouteFromContext(ctx))

	SetRoute(ctx, "objects/{**remainder}")
	assert.Equal(t, "objects/{**remainder}", RouteFromContext(ctx))

	inner := ContextWithRouteCell(ctx)
	SetRoute(inner, "objecttypes/{**remainder}")
	assert.Equal(t, "objecttypes/{**remainder}", RouteFromContext(ctx))
}
