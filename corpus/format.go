package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Formatter renders case events and the final report.
type Formatter interface {
	Format(event Event, report *Report) error
	Summary(report *Report) error
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
	stderr    io.Writer
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter, stderr io.Writer) *FormatHandler {
	return &FormatHandler{formatter: f, stderr: stderr}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, report *Report) error {
	return h.formatter.Format(event, report)
}

// Err writes to stderr.
func (h *FormatHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *FormatHandler) Summary(report *Report) error {
	return h.formatter.Summary(report)
}

// -----------------------------------------------------------------------------
// Styles
// -----------------------------------------------------------------------------

// Styles colors formatter output. A nil or zero Styles renders plain text.
type Styles struct {
	Pass  lipgloss.Style
	Fail  lipgloss.Style
	Skip  lipgloss.Style
	Error lipgloss.Style
	Dim   lipgloss.Style
	Bold  lipgloss.Style

	color bool
}

// ColorStyles returns the styles used on terminals.
func ColorStyles() *Styles {
	return &Styles{
		Pass:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00BA7C")),
		Fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F4212E")).Bold(true),
		Skip:  lipgloss.NewStyle().Foreground(lipgloss.Color("#8899A6")),
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAD1F")).Bold(true),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8899A6")),
		Bold:  lipgloss.NewStyle().Bold(true),
		color: true,
	}
}

func (s *Styles) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}

	return style.Render(text)
}

func (s *Styles) status(a Action) string {
	switch a {
	case ActionPass:
		return s.render(s.Pass, "PASS")
	case ActionFail:
		return s.render(s.Fail, "FAIL")
	case ActionSkip:
		return s.render(s.Skip, "SKIP")
	case ActionError:
		return s.render(s.Error, "ERROR")
	default:
		return strings.ToUpper(string(a))
	}
}

// -----------------------------------------------------------------------------
// Dots Formatter
// -----------------------------------------------------------------------------

// DotsFormatter is a minimal formatter that prints dots for progress.
type DotsFormatter struct {
	w      io.Writer
	styles *Styles
	count  int
}

// NewDotsFormatter creates a dots formatter.
func NewDotsFormatter(w io.Writer, styles *Styles) *DotsFormatter {
	if styles == nil {
		styles = &Styles{}
	}

	return &DotsFormatter{w: w, styles: styles}
}

const lineWidth = 80

// Format prints a single character per terminal event.
func (d *DotsFormatter) Format(event Event, _ *Report) error {
	var char string

	switch event.Action {
	case ActionPass:
		char = d.styles.render(d.styles.Pass, ".")
	case ActionFail:
		char = d.styles.render(d.styles.Fail, "F")
	case ActionSkip:
		char = d.styles.render(d.styles.Skip, "S")
	case ActionError:
		char = d.styles.render(d.styles.Error, "E")
	case ActionRun:
		return nil
	}

	_, err := fmt.Fprint(d.w, char)
	d.count++

	if d.count%lineWidth == 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	return err
}

// Summary prints failure details and the final counts.
func (d *DotsFormatter) Summary(report *Report) error {
	if d.count > 0 && d.count%lineWidth != 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	_, _ = fmt.Fprintln(d.w)

	for _, cr := range report.Failures() {
		writeFailure(d.w, d.styles, cr, "")
		_, _ = fmt.Fprintln(d.w)
	}

	status := d.styles.status(ActionPass)
	if !report.Ok() {
		status = d.styles.status(ActionFail)
	}

	_, _ = fmt.Fprint(d.w, status+" ")

	return report.Summary(d.w)
}

func writeFailure(w io.Writer, styles *Styles, cr *CaseResult, indent string) {
	_, _ = fmt.Fprintf(w, "%s%s %s (%s:%d)\n", indent, styles.status(cr.Status), cr.Case.Name, cr.Case.File, cr.Case.Line)

	if cr.Reason != "" {
		_, _ = fmt.Fprintf(w, "%s  %s\n", indent, cr.Reason)
	}

	if cr.Error != nil {
		_, _ = fmt.Fprintf(w, "%s  %s\n", indent, styles.render(styles.Error, cr.Error.Error()))
	}

	if cr.Diff != "" {
		_, _ = fmt.Fprintf(w, "%s  %s\n", indent, styles.render(styles.Dim, "shape diff (-want +got):"))

		for _, line := range strings.Split(strings.TrimRight(cr.Diff, "\n"), "\n") {
			_, _ = fmt.Fprintf(w, "%s    %s\n", indent, line)
		}
	}
}

// -----------------------------------------------------------------------------
// Verbose Formatter
// -----------------------------------------------------------------------------

// VerboseFormatter prints each case as it runs.
type VerboseFormatter struct {
	w      io.Writer
	styles *Styles
}

// NewVerboseFormatter creates a verbose formatter.
func NewVerboseFormatter(w io.Writer, styles *Styles) *VerboseFormatter {
	if styles == nil {
		styles = &Styles{}
	}

	return &VerboseFormatter{w: w, styles: styles}
}

// Format prints each event as it occurs.
func (v *VerboseFormatter) Format(event Event, _ *Report) error {
	switch event.Action {
	case ActionRun:
		_, _ = fmt.Fprintf(v.w, "=== RUN   %s\n", event.ID())
	case ActionPass, ActionSkip:
		_, _ = fmt.Fprintf(v.w, "--- %s: %s (%s)\n", v.styles.status(event.Action), event.ID(), event.Elapsed)
	case ActionFail, ActionError:
		_, _ = fmt.Fprintf(v.w, "--- %s: %s (%s)\n", v.styles.status(event.Action), event.ID(), event.Elapsed)

		writeFailure(v.w, v.styles, &CaseResult{
			Case:   event.Case,
			Status: event.Action,
			Reason: event.Reason,
			Diff:   event.Diff,
			Error:  event.Error,
		}, "    ")
	}

	return nil
}

// Summary prints the final results.
func (v *VerboseFormatter) Summary(report *Report) error {
	_, _ = fmt.Fprintln(v.w)

	status := v.styles.status(ActionPass)
	if !report.Ok() {
		status = v.styles.status(ActionFail)
	}

	_, _ = fmt.Fprintln(v.w, status)

	return report.Summary(v.w)
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON events.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time    string  `json:"time"`
	Action  string  `json:"action"`
	File    string  `json:"file,omitempty"`
	Case    string  `json:"case"`
	Line    int     `json:"line,omitempty"`
	Elapsed float64 `json:"elapsed,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Diff    string  `json:"diff,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Format outputs a JSON event.
func (j *JSONFormatter) Format(event Event, _ *Report) error {
	je := jsonEvent{
		Time:   event.Time.Format(time.RFC3339Nano),
		Action: string(event.Action),
		Reason: event.Reason,
		Diff:   event.Diff,
	}

	if event.Case != nil {
		je.File = event.Case.File
		je.Case = event.Case.Name
		je.Line = event.Case.Line
	}

	if event.Action.IsTerminal() {
		je.Elapsed = event.Elapsed.Seconds()
	}

	if event.Error != nil {
		je.Error = event.Error.Error()
	}

	return j.enc.Encode(je)
}

type jsonSummary struct {
	Action   string  `json:"action"`
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errors   int     `json:"errors"`
	Skipped  int     `json:"skipped"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  float64 `json:"elapsed"`
	Ok       bool    `json:"ok"`
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(report *Report) error {
	s := report.Stats()

	return j.enc.Encode(jsonSummary{
		Action:   "summary",
		Total:    s.Total,
		Passed:   s.Passed,
		Failed:   s.Failed,
		Errors:   s.Errors,
		Skipped:  s.Skipped,
		PassRate: s.PassRate,
		Elapsed:  report.Elapsed().Seconds(),
		Ok:       report.Ok(),
	})
}

// NewFormatter creates a formatter by name: "dots" (default), "verbose"
// or "json". Colors are used when w is a terminal.
func NewFormatter(name string, w io.Writer) Formatter {
	var styles *Styles
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		styles = ColorStyles()
	}

	switch name {
	case "verbose":
		return NewVerboseFormatter(w, styles)
	case "json":
		return NewJSONFormatter(w)
	default:
		return NewDotsFormatter(w, styles)
	}
}
