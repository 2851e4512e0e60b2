package corpus

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// Stats summarizes a run.
type Stats struct {
	Total   int
	Passed  int
	Failed  int
	Errors  int
	Skipped int

	// PassRate is the percentage of executed (non-skipped) cases that passed.
	PassRate float64
}

// Report accumulates case results during a run.
type Report struct {
	mu sync.RWMutex

	StartTime time.Time
	EndTime   time.Time

	results []*CaseResult
}

// CaseResult holds the outcome of a single case.
type CaseResult struct {
	Case    *Case
	Status  Action
	Elapsed time.Duration
	Reason  string
	Diff    string
	Error   error
}

// NewReport creates an initialized Report.
func NewReport() *Report {
	return &Report{StartTime: time.Now()}
}

// Add records a terminal event in the report.
func (r *Report) Add(event Event) {
	if !event.Action.IsTerminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, &CaseResult{
		Case:    event.Case,
		Status:  event.Action,
		Elapsed: event.Elapsed,
		Reason:  event.Reason,
		Diff:    event.Diff,
		Error:   event.Error,
	})
}

// Finish marks the report as complete.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
}

// Elapsed returns the total run time.
func (r *Report) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Results returns every recorded result in run order.
func (r *Report) Results() []*CaseResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.results)
}

// Stats counts results by status.
func (r *Report) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Stats

	for _, cr := range r.results {
		s.Total++

		switch cr.Status {
		case ActionPass:
			s.Passed++
		case ActionFail:
			s.Failed++
		case ActionError:
			s.Errors++
		case ActionSkip:
			s.Skipped++
		case ActionRun:
			// Not terminal
		}
	}

	if executed := s.Total - s.Skipped; executed > 0 {
		s.PassRate = float64(s.Passed) / float64(executed) * 100
	}

	return s
}

// Ok returns true if every executed case passed.
func (r *Report) Ok() bool {
	s := r.Stats()

	return s.Failed == 0 && s.Errors == 0
}

// Failures returns failed and errored results in run order.
func (r *Report) Failures() []*CaseResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var failed []*CaseResult

	for _, cr := range r.results {
		if cr.Status == ActionFail || cr.Status == ActionError {
			failed = append(failed, cr)
		}
	}

	return failed
}

// FailuresByFile groups failures by the base name of their corpus file.
func (r *Report) FailuresByFile() map[string][]*CaseResult {
	byFile := make(map[string][]*CaseResult)

	for _, cr := range r.Failures() {
		name := "unknown"
		if cr.Case != nil && cr.Case.File != "" {
			name = filepath.Base(cr.Case.File)
		}

		byFile[name] = append(byFile[name], cr)
	}

	return byFile
}

// Summary writes the counts and the failing cases grouped by file.
func (r *Report) Summary(w io.Writer) error {
	s := r.Stats()

	_, err := fmt.Fprintf(w, "%d cases, %d passed, %d failed, %d errors, %d skipped (%.1f%% pass rate) in %s\n",
		s.Total, s.Passed, s.Failed, s.Errors, s.Skipped, s.PassRate,
		r.Elapsed().Round(time.Millisecond),
	)
	if err != nil {
		return err
	}

	byFile := r.FailuresByFile()

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}

	slices.Sort(files)

	for _, f := range files {
		_, _ = fmt.Fprintf(w, "\n  %s (%d failures)\n", f, len(byFile[f]))

		for _, cr := range byFile[f] {
			_, _ = fmt.Fprintf(w, "    %s (line %d)\n", cr.Case.Name, cr.Case.Line)
		}
	}

	return nil
}
