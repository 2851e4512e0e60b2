// Package neo4j loads gram documents into a Neo4j database.
//
// Patterns are translated by the cypher package and executed in a single
// write transaction per load. Every node and relationship written is
// stamped with a batch identifier so a load can be found or removed later.
package neo4j

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
	"github.com/gram-data/gram-go/cypher"
)

// ErrNoConfig is returned when NewLoader is given no connection settings.
var ErrNoConfig = errors.New("neo4j: no connection configured")

// Loader writes patterns to Neo4j.
type Loader struct {
	driver neo4j.DriverWithContext
	db     string
	logger *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for per-load output.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader connects to the database described by cfg.
func NewLoader(ctx context.Context, cfg *gram.Neo4jConfig, opts ...Option) (*Loader, error) {
	if cfg == nil || cfg.URI == "" {
		return nil, ErrNoConfig
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("neo4j: failed to connect: %w", err)
	}

	l := &Loader{driver: driver, db: cfg.Database, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Result summarizes a load.
type Result struct {
	Batch                string
	Statements           int
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
	LabelsAdded          int
}

// counters is the part of neo4j.Counters a load reports.
type counters interface {
	NodesCreated() int
	RelationshipsCreated() int
	PropertiesSet() int
	LabelsAdded() int
}

func (r *Result) add(c counters) {
	r.Statements++
	r.NodesCreated += c.NodesCreated()
	r.RelationshipsCreated += c.RelationshipsCreated()
	r.PropertiesSet += c.PropertiesSet()
	r.LabelsAdded += c.LabelsAdded()
}

func (l *Loader) session(ctx context.Context) neo4j.SessionWithContext {
	cfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite}
	if l.db != "" {
		cfg.DatabaseName = l.db
	}

	return l.driver.NewSession(ctx, cfg)
}

// Load writes patterns in one transaction under a fresh batch identifier.
// Nothing is written if any statement fails.
func (l *Loader) Load(ctx context.Context, patterns []gram.Pattern[gram.Subject]) (Result, error) {
	res := Result{Batch: uuid.NewString()}

	statements, err := cypher.Translate(patterns, cypher.WithBatch(res.Batch))
	if err != nil {
		return res, fmt.Errorf("neo4j: %w", err)
	}

	session := l.session(ctx)
	defer func() { _ = session.Close(ctx) }()

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res = Result{Batch: res.Batch}

		for _, stmt := range statements {
			result, err := tx.Run(ctx, stmt.Text, stmt.Params)
			if err != nil {
				return nil, fmt.Errorf("neo4j: query execution failed: %w", err)
			}

			summary, err := result.Consume(ctx)
			if err != nil {
				return nil, fmt.Errorf("neo4j: failed to consume result: %w", err)
			}

			res.add(summary.Counters())
		}

		return nil, nil
	})
	if err != nil {
		return res, err
	}

	l.logger.Info("loaded patterns",
		zap.String("batch", res.Batch),
		zap.Int("patterns", len(patterns)),
		zap.Int("statements", res.Statements),
		zap.Int("nodes", res.NodesCreated),
		zap.Int("relationships", res.RelationshipsCreated),
	)

	return res, nil
}

// DeleteBatch removes every node written by the load with the given batch
// identifier, along with its relationships. It returns the number of nodes
// deleted.
func (l *Loader) DeleteBatch(ctx context.Context, batch string) (int, error) {
	session := l.session(ctx)
	defer func() { _ = session.Close(ctx) }()

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx,
			"MATCH (n {"+cypher.BatchProperty+": $batch}) DETACH DELETE n",
			map[string]any{"batch": batch},
		)
		if err != nil {
			return 0, fmt.Errorf("neo4j: query execution failed: %w", err)
		}

		summary, err := result.Consume(ctx)
		if err != nil {
			return 0, fmt.Errorf("neo4j: failed to consume result: %w", err)
		}

		return summary.Counters().NodesDeleted(), nil
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("deleted batch", zap.String("batch", batch), zap.Int("nodes", deleted.(int)))

	return deleted.(int), nil
}

// Close releases the driver.
func (l *Loader) Close(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}

	if err := l.driver.Close(ctx); err != nil {
		return fmt.Errorf("neo4j: failed to close driver: %w", err)
	}

	return nil
}
