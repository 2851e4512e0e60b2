package lsp

import (
	"context"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logMessenger is the part of protocol.Client the log core needs.
type logMessenger interface {
	LogMessage(ctx context.Context, params *protocol.LogMessageParams) error
}

// clientCore is a zapcore.Core that forwards entries to the client as
// window/logMessage notifications, so they show up in the editor's LSP log.
// Delivery is asynchronous; entries are dropped when the queue is full.
type clientCore struct {
	zapcore.LevelEnabler

	client  logMessenger
	encoder zapcore.Encoder
	fields  []zapcore.Field
	queue   chan *protocol.LogMessageParams
}

const logQueueSize = 100

// NewClientLogger returns a logger that tees fallback with window/logMessage
// notifications to client. Call the returned stop function to end delivery.
func NewClientLogger(client logMessenger, fallback zapcore.Core, level zapcore.LevelEnabler) (*zap.Logger, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	core := &clientCore{
		LevelEnabler: level,
		client:       client,
		encoder: zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey:     "msg",
			NameKey:        "logger",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		}),
		queue: make(chan *protocol.LogMessageParams, logQueueSize),
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		core.deliver(ctx)
	}()

	stop := func() {
		cancel()
		wg.Wait()
	}

	return zap.New(zapcore.NewTee(core, fallback)), stop
}

func (c *clientCore) deliver(ctx context.Context) {
	for {
		select {
		case params := <-c.queue:
			// The client may already be gone.
			_ = c.client.LogMessage(ctx, params)
		case <-ctx.Done():
			return
		}
	}
}

// With implements zapcore.Core.
func (c *clientCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.encoder = c.encoder.Clone()
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)

	return &clone
}

// Check implements zapcore.Core.
func (c *clientCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}

	return ce
}

// Write implements zapcore.Core.
func (c *clientCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.encoder.EncodeEntry(entry, append(append([]zapcore.Field(nil), c.fields...), fields...))
	if err != nil {
		return err
	}

	params := &protocol.LogMessageParams{
		Type:    messageType(entry.Level),
		Message: strings.TrimSpace(buf.String()),
	}
	buf.Free()

	select {
	case c.queue <- params:
	default:
	}

	return nil
}

// Sync implements zapcore.Core.
func (c *clientCore) Sync() error {
	return nil
}

func messageType(level zapcore.Level) protocol.MessageType {
	switch {
	case level >= zapcore.ErrorLevel:
		return protocol.MessageTypeError
	case level == zapcore.WarnLevel:
		return protocol.MessageTypeWarning
	case level == zapcore.InfoLevel:
		return protocol.MessageTypeInfo
	default:
		return protocol.MessageTypeLog
	}
}
