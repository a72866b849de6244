// Package ui renders console output: styled status lines, a spinner while a
// provider call runs, and the interactive setup form.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

// Reporter defines the console operations used by a run.
type Reporter interface {
	ShowMessage(message, source string)
	ShowInfo(message string)
	ShowSuccess(message string)
	ShowWarning(message string)
	ShowError(err error)
	StartSpinner(text string) Spinner
}

// Spinner provides loading animation functionality.
type Spinner interface {
	Stop()
}

// ConsoleReporter writes results to out and diagnostics to errOut.
type ConsoleReporter struct {
	out      io.Writer
	errOut   io.Writer
	styles   *styles
	spinners bool
	verbose  bool
}

// styles holds the lipgloss styles for UI rendering.
type styles struct {
	title      lipgloss.Style
	subject    lipgloss.Style
	source     lipgloss.Style
	success    lipgloss.Style
	warning    lipgloss.Style
	errorStyle lipgloss.Style
	info       lipgloss.Style
}

// NewConsoleReporter creates a reporter. Colour and the spinner are only
// used when the destination is a terminal.
func NewConsoleReporter(out, errOut io.Writer, colorEnabled bool) *ConsoleReporter {
	return &ConsoleReporter{
		out:      out,
		errOut:   errOut,
		styles:   newStyles(lipgloss.NewRenderer(out), colorEnabled),
		spinners: IsTerminal(errOut),
	}
}

// SetVerbose switches ShowError to the full error chain.
func (r *ConsoleReporter) SetVerbose(verbose bool) {
	r.verbose = verbose
}

func newStyles(renderer *lipgloss.Renderer, colorEnabled bool) *styles {
	if !colorEnabled {
		plain := renderer.NewStyle()
		return &styles{
			title:      plain,
			subject:    plain,
			source:     plain,
			success:    plain,
			warning:    plain,
			errorStyle: plain,
			info:       plain,
		}
	}

	return &styles{
		title: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		subject: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220")),
		source: renderer.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		success: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		warning: renderer.NewStyle().
			Foreground(lipgloss.Color("214")),
		errorStyle: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
		info: renderer.NewStyle().
			Foreground(lipgloss.Color("39")),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ShowMessage displays the commit message and where it came from.
func (r *ConsoleReporter) ShowMessage(message, source string) {
	fmt.Fprintln(r.out, r.styles.title.Render("Commit message")+" "+r.styles.source.Render("("+source+")"))
	fmt.Fprintln(r.out, r.styles.subject.Render(message))
}

// ShowInfo displays a neutral status line.
func (r *ConsoleReporter) ShowInfo(message string) {
	fmt.Fprintln(r.out, r.styles.info.Render(message))
}

// ShowSuccess displays a success message to the user.
func (r *ConsoleReporter) ShowSuccess(message string) {
	fmt.Fprintln(r.out, r.styles.success.Render("[OK] "+message))
}

// ShowWarning displays a warning on the diagnostic stream.
func (r *ConsoleReporter) ShowWarning(message string) {
	fmt.Fprintln(r.errOut, r.styles.warning.Render("[WARN] "+message))
}

// ShowError displays an error on the diagnostic stream. Tokens are masked.
func (r *ConsoleReporter) ShowError(err error) {
	if err == nil {
		return
	}
	text := apperrors.FormatError(err)
	if r.verbose {
		text = strings.TrimRight(apperrors.FormatErrorVerbose(err), "\n")
	}
	fmt.Fprintln(r.errOut, r.styles.errorStyle.Render(text))
}

// StartSpinner starts a spinner on the diagnostic stream. It is a no-op
// when that stream is not a terminal.
func (r *ConsoleReporter) StartSpinner(text string) Spinner {
	if !r.spinners {
		return noopSpinner{}
	}
	s := newBubbleSpinner(text, r.errOut)
	s.Start()
	return s
}

// QuietReporter discards everything. It is used where stdout must carry
// nothing but the message.
type QuietReporter struct{}

func (QuietReporter) ShowMessage(string, string)  {}
func (QuietReporter) ShowInfo(string)             {}
func (QuietReporter) ShowSuccess(string)          {}
func (QuietReporter) ShowWarning(string)          {}
func (QuietReporter) ShowError(error)             {}
func (QuietReporter) StartSpinner(string) Spinner { return noopSpinner{} }

type noopSpinner struct{}

func (noopSpinner) Stop() {}
