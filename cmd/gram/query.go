package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
	"github.com/gram-data/gram-go/query"
)

// ErrNoExpression is returned when query is run without an expression.
var ErrNoExpression = errors.New("no query expression given")

func (a *app) queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Print the patterns matching an expression",
		ArgsUsage: "<expression> [files or directories...] (default: stdin)",
		Description: `The expression is evaluated against each top-level pattern with the
variables identity, labels, properties, form, elements and depth.

   gram query '"Person" in labels && properties.age >= 18' people.gram`,
		Flags: []cli.Flag{
			outputFlag(formatGram),
			&cli.BoolFlag{
				Name:    "descend",
				Aliases: []string{"d"},
				Usage:   "also match nested elements",
			},
		},
		Action: a.runQuery,
	}
}

func (a *app) runQuery(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return ErrNoExpression
	}

	filter, err := query.Compile(cmd.Args().First())
	if err != nil {
		return err
	}

	args := cmd.Args().Tail()
	if len(args) == 0 {
		args = []string{"-"}
	}

	files, err := collectFiles(args, a.config.FileExtensions())
	if err != nil {
		return err
	}

	var opts []query.SelectOption
	if cmd.Bool("descend") {
		opts = append(opts, query.Descend())
	}

	var (
		failed  bool
		matched []gram.Pattern[gram.Subject]
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

		selected, err := filter.Select(patterns, opts...)
		if err != nil {
			return err
		}

		a.logger.Debug("queried",
			zap.String("file", path),
			zap.Int("patterns", len(patterns)),
			zap.Int("matched", len(selected)),
		)

		matched = append(matched, selected...)
	}

	if err := a.writePatterns(a.stdout, cmd.String("format"), matched); err != nil {
		return err
	}

	if failed {
		return ErrDiagnostics
	}

	return nil
}
