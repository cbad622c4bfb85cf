package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := messaging.NewZapLoggerAdapter(zap.New(core))

	adapter.Info("subscribed", watermill.LogFields{"topic": "mapping.created"})
	adapter.Error("publish failed", errors.New("boom"), nil)
	adapter.With(watermill.LogFields{"consumer_group": "audit"}).Trace("polling", nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "watermill", entries[0].LoggerName)
	assert.Equal(t, "mapping.created", entries[0].ContextMap()["topic"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, "audit", entries[2].ContextMap()["consumer_group"])
}
