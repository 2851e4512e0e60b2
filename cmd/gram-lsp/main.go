// Command gram-lsp is a Language Server Protocol server for gram files.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gram "github.com/gram-data/gram-go"
	"github.com/gram-data/gram-go/lsp"
)

var (
	debugFlag     = flag.Bool("debug", false, "Enable debug logging")
	clientLogFlag = flag.Bool("client-log", false, "Also send log entries to the editor")
)

func main() {
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if *debugFlag {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting gram-lsp server")

	err = run(context.Background(), logger, config.Level, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, level zapcore.LevelEnabler, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	client := protocol.ClientDispatcher(conn, logger)

	if *clientLogFlag {
		var stop func()

		logger, stop = lsp.NewClientLogger(client, logger.Core(), level)
		defer stop()
	}

	server := lsp.NewServer(client, logger, lsp.WithFormatOptions(formatOptions(logger)))

	conn.Go(ctx, server.Handler())

	select {
	case <-conn.Done():
	case <-server.Done():
		_ = conn.Close()
		<-conn.Done()
	}

	if err := conn.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
		return err
	}

	return nil
}

// formatOptions reads the formatting section of the nearest .gram.yaml.
func formatOptions(logger *zap.Logger) gram.FormatOptions {
	cfg, err := gram.LoadConfig(".")
	if err != nil {
		if !errors.Is(err, gram.ErrConfigNotFound) {
			logger.Warn("Ignoring config", zap.Error(err))
		}

		return gram.FormatOptions{}
	}

	return cfg.Format
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
