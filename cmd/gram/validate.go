package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check gram files for syntax errors",
		ArgsUsage: "[files or directories...] (default: .)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "re-check files when they change",
			},
		},
		Action: a.runValidate,
	}
}

func (a *app) runValidate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectFiles(args, a.config.FileExtensions())
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoGramFiles
	}

	invalid := 0

	for _, path := range files {
		ok, err := a.validateFile(path)
		if err != nil {
			return err
		}

		if !ok {
			invalid++
		}
	}

	if cmd.Bool("watch") {
		return a.watch(ctx, files)
	}

	if invalid > 0 {
		_, _ = fmt.Fprintf(a.stderr, "%d of %d files have errors\n", invalid, len(files))

		return ErrDiagnostics
	}

	return nil
}

// validateFile reports whether the file parses, printing a diagnostic when
// it does not. Only read failures are returned as errors.
func (a *app) validateFile(path string) (bool, error) {
	content, err := a.readInput(path)
	if err != nil {
		return false, err
	}

	if err := gram.Validate(content); err != nil {
		a.printDiagnostic(path, err)

		return false, nil
	}

	a.logger.Debug("valid", zap.String("file", path))

	return true, nil
}
