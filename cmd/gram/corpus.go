package main

import (
	"context"
	"fmt"
	"regexp"

	"github.com/urfave/cli/v3"

	"github.com/gram-data/gram-go/corpus"
)

// defaultCorpusDir is used when neither an argument nor the config names one.
const defaultCorpusDir = "corpus/testdata"

func (a *app) corpusCommand() *cli.Command {
	return &cli.Command{
		Name:      "corpus",
		Usage:     "Run the tree-sitter-gram conformance corpus against the parser",
		ArgsUsage: "[directory] (default: corpus.dir from config, or " + defaultCorpusDir + ")",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: dots, verbose or json",
				Value: "dots",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop on first failure",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "run only cases whose file/name matches the regular expression",
			},
		},
		Action: a.runCorpus,
	}
}

func (a *app) runCorpus(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = a.config.Corpus.Dir
	}

	if dir == "" {
		dir = defaultCorpusDir
	}

	cases, err := corpus.LoadDir(dir)
	if err != nil {
		return err
	}

	opts := []corpus.Option{
		corpus.WithFailFast(cmd.Bool("fail-fast")),
		corpus.WithLogger(a.logger),
	}

	if pattern := cmd.String("run"); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid --run pattern: %w", err)
		}

		opts = append(opts, corpus.WithFilter(re))
	}

	handler := corpus.NewFormatHandler(corpus.NewFormatter(cmd.String("format"), a.stdout), a.stderr)
	opts = append(opts, corpus.WithHandler(handler))

	report, err := corpus.Run(ctx, cases, opts...)
	if err != nil {
		return err
	}

	if err := handler.Summary(report); err != nil {
		return err
	}

	if !report.Ok() {
		return ErrCorpusFailed
	}

	return nil
}
