package corpus

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

// Outcome is the verdict on a single case.
type Outcome struct {
	Action Action // ActionPass, ActionFail or ActionError
	Reason string
	Diff   string
	Error  error
}

// Run parses the case input and checks it against the expected tree.
// Parse and Validate must also agree on whether the input is valid.
func (c *Case) Run() Outcome {
	patterns, parseErr := gram.Parse(c.Input)
	validateErr := gram.Validate(c.Input)

	if (parseErr == nil) != (validateErr == nil) {
		return Outcome{
			Action: ActionFail,
			Reason: "Parse and Validate disagree",
			Error:  errors.Join(parseErr, validateErr),
		}
	}

	if c.ExpectError() {
		if parseErr != nil {
			return Outcome{Action: ActionPass}
		}

		return Outcome{Action: ActionFail, Reason: fmt.Sprintf("expected a parse error, got %d patterns", len(patterns))}
	}

	if parseErr != nil {
		return Outcome{Action: ActionFail, Reason: "parse failed", Error: parseErr}
	}

	tree, err := ParseSexp(c.Expected)
	if err != nil {
		return Outcome{Action: ActionError, Reason: "cannot read expected tree", Error: err}
	}

	want, err := ExpectedShapes(tree)
	if err != nil {
		return Outcome{Action: ActionError, Reason: "cannot convert expected tree", Error: err}
	}

	if diff := cmp.Diff(want, ShapesOf(patterns), cmpopts.EquateEmpty()); diff != "" {
		return Outcome{Action: ActionFail, Reason: "structure mismatch", Diff: diff}
	}

	return Outcome{Action: ActionPass}
}

// Runner executes corpus cases.
type Runner struct {
	handler  Handler
	failFast bool
	filter   *regexp.Regexp
	logger   *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithFailFast stops on first failure.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithFilter sets a regex pattern to filter which cases run.
// Cases whose ID does not match are skipped.
func WithFilter(pattern *regexp.Regexp) Option {
	return func(r *Runner) {
		r.filter = pattern
	}
}

// WithLogger sets the logger used for per-case debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes cases with a Runner built from opts.
func Run(ctx context.Context, cases []*Case, opts ...Option) (*Report, error) {
	return New(opts...).Run(ctx, cases)
}

// Run executes cases in order and returns the report. Stopping early
// because of fail-fast is not an error.
func (r *Runner) Run(ctx context.Context, cases []*Case) (*Report, error) {
	report := NewReport()

	handlers := []Handler{NewReportHandler()}
	if r.handler != nil {
		handlers = append(handlers, r.handler)
	}

	if r.failFast {
		handlers = append(handlers, NewStopOnFailHandler(1))
	}

	handler := NewMultiHandler(handlers...)

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			report.Finish()

			return report, err
		}

		err := r.runCase(ctx, c, handler, report)
		if errors.Is(err, ErrMaxFailures) {
			break
		}

		if err != nil {
			report.Finish()

			return report, err
		}
	}

	report.Finish()

	return report, nil
}

func (r *Runner) runCase(ctx context.Context, c *Case, handler Handler, report *Report) error {
	if r.filter != nil && !r.filter.MatchString(c.ID()) {
		return handler.Event(ctx, Event{Time: time.Now(), Action: ActionSkip, Case: c}, report)
	}

	start := time.Now()

	if err := handler.Event(ctx, Event{Time: start, Action: ActionRun, Case: c}, report); err != nil {
		return err
	}

	out := c.Run()
	elapsed := time.Since(start)

	r.logger.Debug("corpus case",
		zap.String("case", c.ID()),
		zap.String("action", string(out.Action)),
		zap.Duration("elapsed", elapsed),
		zap.Error(out.Error),
	)

	return handler.Event(ctx, Event{
		Time:    time.Now(),
		Action:  out.Action,
		Case:    c,
		Elapsed: elapsed,
		Reason:  out.Reason,
		Diff:    out.Diff,
		Error:   out.Error,
	}, report)
}
