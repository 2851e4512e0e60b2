package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	gram "github.com/gram-data/gram-go"
	"github.com/gram-data/gram-go/cypher"
	"github.com/gram-data/gram-go/databases/neo4j"
)

func (a *app) loadCommand() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load gram files into Neo4j",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "uri",
				Usage:   "database connection URI",
				Sources: cli.EnvVars("GRAM_NEO4J_URI"),
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "database username",
				Sources: cli.EnvVars("GRAM_NEO4J_USER"),
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "database password",
				Sources: cli.EnvVars("GRAM_NEO4J_PASS"),
			},
			&cli.StringFlag{
				Name:  "database",
				Usage: "database name (default: the server default)",
			},
			&cli.StringFlag{
				Name:  "delete",
				Usage: "remove everything written by the given batch instead of loading",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the Cypher statements without connecting",
			},
		},
		Action: a.runLoad,
	}
}

func (a *app) runLoad(ctx context.Context, cmd *cli.Command) error {
	var patterns []gram.Pattern[gram.Subject]

	if cmd.String("delete") == "" {
		var err error

		patterns, err = a.loadPatterns(cmd.Args().Slice())
		if err != nil {
			return err
		}
	}

	if cmd.Bool("dry-run") {
		return a.printStatements(patterns)
	}

	cfg := a.neo4jConfig(cmd)
	if cfg.URI == "" {
		return ErrNoConnectionURI
	}

	loader, err := neo4j.NewLoader(ctx, cfg, neo4j.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer func() { _ = loader.Close(ctx) }()

	if batch := cmd.String("delete"); batch != "" {
		deleted, err := loader.DeleteBatch(ctx, batch)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(a.stdout, "deleted %d nodes from batch %s\n", deleted, batch)

		return nil
	}

	res, err := loader.Load(ctx, patterns)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(a.stdout, "batch %s: %d statements, %d nodes, %d relationships, %d properties, %d labels\n",
		res.Batch, res.Statements, res.NodesCreated, res.RelationshipsCreated, res.PropertiesSet, res.LabelsAdded)

	return nil
}

// loadPatterns parses every file, printing diagnostics for the ones that
// fail. Nothing is returned unless all of them parse.
func (a *app) loadPatterns(args []string) ([]gram.Pattern[gram.Subject], error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectFiles(args, a.config.FileExtensions())
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, ErrNoGramFiles
	}

	var (
		failed   bool
		patterns []gram.Pattern[gram.Subject]
	)

	for _, path := range files {
		content, err := a.readInput(path)
		if err != nil {
			return nil, err
		}

		parsed, err := gram.Parse(content)
		if err != nil {
			a.printDiagnostic(path, err)

			failed = true

			continue
		}

		patterns = append(patterns, parsed...)
	}

	if failed {
		return nil, ErrDiagnostics
	}

	return patterns, nil
}

// neo4jConfig merges the config file settings with flags, flags winning.
func (a *app) neo4jConfig(cmd *cli.Command) *gram.Neo4jConfig {
	cfg := &gram.Neo4jConfig{}
	if a.config.Neo4j != nil {
		*cfg = *a.config.Neo4j
	}

	if uri := cmd.String("uri"); uri != "" {
		cfg.URI = uri
	}

	if username := cmd.String("username"); username != "" {
		cfg.Username = username
	}

	if password := cmd.String("password"); password != "" {
		cfg.Password = password
	}

	if database := cmd.String("database"); database != "" {
		cfg.Database = database
	}

	return cfg
}

func (a *app) printStatements(patterns []gram.Pattern[gram.Subject]) error {
	statements, err := cypher.Translate(patterns)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		_, _ = fmt.Fprintln(a.stdout, stmt.Text)

		keys := make([]string, 0, len(stmt.Params))
		for k := range stmt.Params {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			_, _ = fmt.Fprintf(a.stdout, "  // $%s = %#v\n", k, stmt.Params[k])
		}
	}

	return nil
}
