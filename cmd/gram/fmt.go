package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

func (a *app) fmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Rewrite gram files in canonical layout (comments are dropped)",
		ArgsUsage: "[files or directories...] (default: stdin)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "write the result back to the file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "check",
				Aliases: []string{"l"},
				Usage:   "list files whose layout differs and fail if there are any",
			},
			&cli.BoolFlag{
				Name:  "blank-lines",
				Usage: "separate top-level patterns with an empty line (overrides config)",
			},
		},
		Action: a.runFmt,
	}
}

func (a *app) runFmt(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"-"}
	}

	files, err := collectFiles(args, a.config.FileExtensions())
	if err != nil {
		return err
	}

	opts := a.config.Format
	if cmd.IsSet("blank-lines") {
		opts.BlankLines = cmd.Bool("blank-lines")
	}

	var (
		failed    bool
		unchanged = true
	)

	for _, path := range files {
		content, err := a.readInput(path)
		if err != nil {
			return err
		}

		patterns, err := gram.Parse(content)
		if err != nil {
			a.printDiagnostic(path, err)

			failed = true

			continue
		}

		formatted := gram.SerializeAllWith(patterns, opts)

		switch {
		case cmd.Bool("check"):
			if formatted != content {
				_, _ = fmt.Fprintln(a.stdout, path)

				unchanged = false
			}
		case cmd.Bool("write") && path != "-":
			if formatted == content {
				continue
			}

			if err := writeFile(path, formatted); err != nil {
				return err
			}

			a.logger.Debug("formatted", zap.String("file", path))
		default:
			if _, err := io.WriteString(a.stdout, formatted); err != nil {
				return err
			}
		}
	}

	switch {
	case failed:
		return ErrDiagnostics
	case !unchanged:
		return ErrNotFormatted
	default:
		return nil
	}
}

// writeFile replaces the contents of path, keeping its permissions.
func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
