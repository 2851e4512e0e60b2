package corpus

import "context"

// Handler receives case events during a run.
type Handler interface {
	// Event is called for each case event as it occurs.
	Event(ctx context.Context, event Event, report *Report) error

	// Err is called for problems outside any single case.
	Err(text string) error
}

// MultiHandler fans out events to multiple handlers.
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a handler that dispatches to multiple handlers.
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Event dispatches to all handlers, stopping on first error.
func (m *MultiHandler) Event(ctx context.Context, event Event, report *Report) error {
	for _, h := range m.handlers {
		if err := h.Event(ctx, event, report); err != nil {
			return err
		}
	}

	return nil
}

// Err dispatches to all handlers.
func (m *MultiHandler) Err(text string) error {
	for _, h := range m.handlers {
		if err := h.Err(text); err != nil {
			return err
		}
	}

	return nil
}

// ReportHandler records terminal events in the report.
type ReportHandler struct{}

// NewReportHandler creates a handler that accumulates results.
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// Event updates the report.
func (h *ReportHandler) Event(_ context.Context, event Event, report *Report) error {
	report.Add(event)

	return nil
}

// Err is a no-op for ReportHandler.
func (h *ReportHandler) Err(_ string) error {
	return nil
}

// StopOnFailHandler stops the run when max failures is reached.
type StopOnFailHandler struct {
	maxFails int
}

// NewStopOnFailHandler creates a handler that stops after n failures.
func NewStopOnFailHandler(maxFails int) *StopOnFailHandler {
	return &StopOnFailHandler{maxFails: maxFails}
}

// Event checks if we've hit max failures.
func (h *StopOnFailHandler) Event(_ context.Context, event Event, report *Report) error {
	if h.maxFails <= 0 {
		return nil
	}

	if event.Action == ActionFail || event.Action == ActionError {
		stats := report.Stats()
		if stats.Failed+stats.Errors >= h.maxFails {
			return ErrMaxFailures
		}
	}

	return nil
}

// Err is a no-op.
func (h *StopOnFailHandler) Err(_ string) error {
	return nil
}
