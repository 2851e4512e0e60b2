package corpus

import "time"

// Action represents the type of case event.
type Action string

// Action constants for case events.
const (
	ActionRun   Action = "run"
	ActionPass  Action = "pass"
	ActionFail  Action = "fail"
	ActionSkip  Action = "skip"
	ActionError Action = "error"
)

// IsTerminal returns true if this action ends a case.
func (a Action) IsTerminal() bool {
	return a == ActionPass || a == ActionFail || a == ActionSkip || a == ActionError
}

// Event represents a single case event emitted during a run.
type Event struct {
	Time    time.Time     // When the event occurred
	Action  Action        // What happened
	Case    *Case         // The case the event belongs to
	Elapsed time.Duration // Time taken (for terminal events)

	// For failures
	Reason string // One-line description of what went wrong
	Diff   string // Shape diff (-want +got) for structure mismatches
	Error  error  // Parser or harness error, if any
}

// ID returns the case identifier, or "" for events without a case.
func (e Event) ID() string {
	if e.Case == nil {
		return ""
	}

	return e.Case.ID()
}
