// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool

	pal palette
}

// palette holds the semantic colour roles of a Writer.
type palette struct {
	title   *color.Color
	section *color.Color
	model   *color.Color
	pass    *color.Color
	fail    *color.Color
	warn    *color.Color
	dim     *color.Color
	dryRun  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:   color.New(color.Bold, color.FgCyan),
		section: color.New(color.Bold),
		model:   color.New(color.Bold, color.FgCyan),
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
		dryRun:  color.New(color.Bold, color.FgYellow),
	}
	for _, c := range []*color.Color{p.title, p.section, p.model, p.pass, p.fail, p.warn, p.dim, p.dryRun} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// New creates a new Writer with default settings. Colour follows
// color.NoColor, which is set when stdout is not a terminal or NO_COLOR is
// present.
func New() *Writer {
	return NewWithWriters(os.Stdout, os.Stderr, !color.NoColor)
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, useColor bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: useColor,
		pal:   newPalette(useColor),
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetColor enables or disables colour.
func (w *Writer) SetColor(enabled bool) {
	w.color = enabled
	w.pal = newPalette(enabled)
}

// Quiet reports whether quiet mode is on.
func (w *Writer) Quiet() bool { return w.quiet }

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s", w.pal.warn.Sprintf("warning: "+format, args...))
}

// ErrorPrefix prints an error message with credo prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	w.Errorln("%s %s", w.pal.fail.Sprint("credo:"), fmt.Sprintf(format, args...))
}

// ModelStart prints the start of a model run.
func (w *Writer) ModelStart(model, action string) {
	if w.quiet {
		return
	}
	// Empty line for visual separation
	w.Println("")
	w.Println("%s", w.pal.model.Sprintf("─── [%s] %s ───", model, action))
}

// ModelSuccess prints a completed model run.
func (w *Writer) ModelSuccess(model, detail string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("%s %s %s", w.pal.pass.Sprintf("[%s]", model), detail, w.pal.pass.Sprint("✓"))
	} else {
		w.Println("[%s] %s done", model, detail)
	}
}

// ModelFailed prints a failed model run.
func (w *Writer) ModelFailed(model string, err error) {
	w.Errorln("%s %v", w.pal.fail.Sprintf("[%s] failed:", model), err)
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.pal.section.Sprintf("=== %s ===", title))
}

// List prints a list of items (skipped in quiet mode).
func (w *Writer) List(items []string) {
	if w.quiet {
		return
	}
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple table with every line prefixed by indent.
func (w *Writer) Table(indent string, headers []string, rows [][]string) {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, fmt.Sprintf("%-*s", widths[i], h))
	}
	w.Println("%s%s", indent, strings.TrimRight(strings.Join(headerParts, "  "), " "))

	var sepParts []string
	for _, width := range widths {
		sepParts = append(sepParts, strings.Repeat("-", width))
	}
	w.Println("%s%s", indent, strings.Join(sepParts, "  "))

	for _, row := range rows {
		var rowParts []string
		for i, cell := range row {
			if i < len(widths) {
				rowParts = append(rowParts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		w.Println("%s%s", indent, strings.TrimRight(strings.Join(rowParts, "  "), " "))
	}
}

// SummaryHeader prints a summary section header.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	w.Println("%s", w.pal.title.Sprintf("=== %s ===", title))
	w.Println("")
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.pal.dim.Sprint(label+":"), value)
}

// SummaryPassed prints a passed/success items summary.
func (w *Writer) SummaryPassed(label, value string) {
	w.Println("  %s %s", w.pal.dim.Sprint(label+":"), w.pal.pass.Sprint(value))
}

// SummaryFailed prints a failed items summary.
func (w *Writer) SummaryFailed(label, value string) {
	w.Println("  %s %s", w.pal.dim.Sprint(label+":"), w.pal.fail.Sprint(value))
}

// SummarySectionLabel prints a label for a summary section, such as "Models:".
func (w *Writer) SummarySectionLabel(label string) {
	w.Println("  %s", w.pal.dim.Sprint(label))
}

// SummaryAction prints an item with status indicator, name, detail and
// optional error.
func (w *Writer) SummaryAction(name string, success bool, detail string, errMsg string) {
	if w.color {
		mark := w.pal.pass.Sprint("✓")
		if !success {
			mark = w.pal.fail.Sprint("✗")
		}
		w.Print("    %s %-20s %s", mark, name, w.pal.dim.Sprint(detail))
		if !success && errMsg != "" {
			w.Print("  %s", w.pal.dim.Sprintf("(%s)", errMsg))
		}
	} else {
		mark := "+"
		if !success {
			mark = "x"
		}
		w.Print("    %s %-20s %s", mark, name, detail)
		if !success && errMsg != "" {
			w.Print("  (%s)", errMsg)
		}
	}
	w.Print("\n")
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.pal.pass.Sprintf(format, args...))
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.pal.fail.Sprintf(format, args...))
}

// DryRunStart prints the dry run header.
func (w *Writer) DryRunStart() {
	w.Println("")
	w.Println("%s", w.pal.dryRun.Sprint("=== DRY RUN ==="))
	w.Println("")
}

// DryRunEnd prints the dry run footer.
func (w *Writer) DryRunEnd() {
	w.Println("")
	w.Println("%s", w.pal.dryRun.Sprint("=== END DRY RUN ==="))
}

// ValidationSuccess prints a validation success message.
func (w *Writer) ValidationSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s %s", w.pal.pass.Sprint("✓"), msg)
	} else {
		w.Println("%s", msg)
	}
}

// Hint prints a hint that follows an error to stderr (skipped in quiet mode).
func (w *Writer) Hint(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Errorln("%s", w.pal.dim.Sprintf(format, args...))
}
