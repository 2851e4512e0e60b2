// Command gram parses, checks, formats, queries and loads gram files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gram "github.com/gram-data/gram-go"
)

// Command errors. Diagnostics are printed before these are returned.
var (
	ErrNoGramFiles     = errors.New("no gram files found")
	ErrDiagnostics     = errors.New("gram files contain errors")
	ErrNotFormatted    = errors.New("gram files are not formatted")
	ErrCorpusFailed    = errors.New("corpus cases failed")
	ErrNoConnectionURI = errors.New("no connection URI specified (use --uri or .gram.yaml)")
)

func main() {
	err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(context.Background(), os.Args)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "gram: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every command shares: the standard streams, the logger
// and the loaded config.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	level  zap.AtomicLevel
	logger *zap.Logger

	// config is never nil after before has run.
	config *gram.Config
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		level:  zap.NewAtomicLevelAt(zapcore.WarnLevel),
		config: &gram.Config{},
	}

	a.logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		a.level,
	))

	return &cli.Command{
		Name:      "gram",
		Usage:     "work with gram notation files",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to .gram.yaml (default: nearest in a parent directory)",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			a.parseCommand(),
			a.validateCommand(),
			a.fmtCommand(),
			a.queryCommand(),
			a.corpusCommand(),
			a.loadCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		a.level.SetLevel(zapcore.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		cfg, err := gram.LoadConfigFile(path)
		if err != nil {
			return ctx, err
		}

		a.config = cfg

		return ctx, nil
	}

	cfg, err := gram.LoadConfig(".")

	switch {
	case err == nil:
		a.config = cfg
	case errors.Is(err, gram.ErrConfigNotFound):
		a.logger.Debug("no config file found")
	default:
		return ctx, err
	}

	return ctx, nil
}

// readInput reads a file, or stdin when path is "-".
func (a *app) readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: file path from user input is expected
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return string(data), nil
}

// printDiagnostic writes err as "path:line:col: error: message".
func (a *app) printDiagnostic(path string, err error) {
	perr, ok := gram.AsParseError(err)
	if !ok {
		_, _ = fmt.Fprintf(a.stderr, "%s: error: %v\n", path, err)

		return
	}

	_, _ = fmt.Fprintf(a.stderr, "%s:%d:%d: error: %s\n",
		path, perr.Span.Start.Line, perr.Span.Start.Column, perr.Message)
}
