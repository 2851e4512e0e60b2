package lsp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestClientLogger(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}

	logger, stop := NewClientLogger(client, zapcore.NewNopCore(), zapcore.InfoLevel)

	logger.Debug("hidden")
	logger.With(zap.String("uri", "file:///a.gram")).Warn("careful", zap.Int("n", 2))

	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()

		return len(client.logs) == 1
	}, time.Second, 5*time.Millisecond)

	stop()

	client.mu.Lock()
	defer client.mu.Unlock()

	assert.Equal(t, protocol.MessageTypeWarning, client.logs[0].Type)
	assert.Contains(t, client.logs[0].Message, "careful")
	assert.Contains(t, client.logs[0].Message, `"uri": "file:///a.gram"`)
	assert.Contains(t, client.logs[0].Message, `"n": 2`)
}

func TestMessageType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, protocol.MessageTypeLog, messageType(zapcore.DebugLevel))
	assert.Equal(t, protocol.MessageTypeInfo, messageType(zapcore.InfoLevel))
	assert.Equal(t, protocol.MessageTypeWarning, messageType(zapcore.WarnLevel))
	assert.Equal(t, protocol.MessageTypeError, messageType(zapcore.ErrorLevel))
	assert.Equal(t, protocol.MessageTypeError, messageType(zapcore.FatalLevel))
}
