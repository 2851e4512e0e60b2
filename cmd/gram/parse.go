package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	gram "github.com/gram-data/gram-go"
)

// Output formats for commands that print patterns.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatGram = "gram"
)

func outputFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "output format: json, yaml or gram",
		Value:   value,
		Validator: func(s string) error {
			switch s {
			case formatJSON, formatYAML, formatGram:
				return nil
			default:
				return fmt.Errorf("unknown output format %q", s)
			}
		},
	}
}

func (a *app) parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse gram files and print their patterns",
		ArgsUsage: "[files...] (default: stdin)",
		Flags: []cli.Flag{
			outputFlag(formatJSON),
		},
		Action: a.runParse,
	}
}

func (a *app) runParse(_ context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		files = []string{"-"}
	}

	var failed bool

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

		a.logger.Debug("parsed", zap.String("file", path), zap.Int("patterns", len(patterns)))

		if err := a.writePatterns(a.stdout, cmd.String("format"), patterns); err != nil {
			return err
		}
	}

	if failed {
		return ErrDiagnostics
	}

	return nil
}

// writePatterns prints patterns in the named output format.
func (a *app) writePatterns(w io.Writer, format string, patterns []gram.Pattern[gram.Subject]) error {
	switch format {
	case formatGram:
		_, err := io.WriteString(w, gram.SerializeAllWith(patterns, a.config.Format))

		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(toASTs(patterns)); err != nil {
			return err
		}

		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(toASTs(patterns))
	}
}

func toASTs(patterns []gram.Pattern[gram.Subject]) []gram.AstPattern {
	asts := make([]gram.AstPattern, len(patterns))
	for i, p := range patterns {
		asts[i] = gram.ToAST(p)
	}

	return asts
}
