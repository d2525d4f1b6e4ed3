package formatting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatOrder renders an order as a numbered table
func (f *TableFormatter) FormatOrder(w io.Writer, report OrderReport) error {
	if len(report.Components) == 0 {
		fmt.Fprint(w, f.formatEmptyMessage("No components defined"))
		return nil
	}

	t := f.createTable(w)
	t.SetTitle(fmt.Sprintf("%s order", report.Direction))
	t.AppendHeader(table.Row{"#", "COMPONENT", "VERSION", "DEPENDS ON"})

	for _, entry := range report.Components {
		component := entry.Component
		if !entry.Defined {
			component = f.colorize(text.FgYellow, component+" (not defined)")
		}
		t.AppendRow(table.Row{
			entry.Position,
			component,
			entry.Version,
			strings.Join(entry.Dependencies, ", "),
		})
	}

	t.Render()
	return nil
}

// FormatCheck renders every problem section that is not empty, followed by
// the overall status
func (f *TableFormatter) FormatCheck(w io.Writer, report CheckReport) error {
	if len(report.Cycle) > 0 {
		fmt.Fprintf(w, "%s %s\n\n",
			f.colorize(text.FgRed, "Dependency cycle:"),
			strings.Join(report.Cycle, " -> "))
	}

	if len(report.Missing) > 0 {
		f.renderMissing(w, "Missing required dependencies", report.Missing)
	}

	if len(report.Optional) > 0 {
		f.renderMissing(w, "Missing non-required dependencies", report.Optional)
	}

	if len(report.Mismatches) > 0 {
		t := f.createTable(w)
		t.SetTitle("Version mismatches")
		t.AppendHeader(table.Row{"COMPONENT", "DEPENDENCY", "CONSTRAINT", "VERSION", "REASON"})
		for _, m := range report.Mismatches {
			t.AppendRow(table.Row{m.Component, m.Dependency, m.Constraint, m.Version, m.Reason})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if report.Failed() {
		fmt.Fprintln(w, f.colorize(text.FgRed, "✗ dependency check failed"))
	} else {
		fmt.Fprintln(w, f.colorize(text.FgGreen, "✓ all dependencies satisfied"))
	}
	return nil
}

func (f *TableFormatter) renderMissing(w io.Writer, title string, entries []MissingEntry) {
	t := f.createTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"COMPONENT", "MISSING"})
	for _, entry := range entries {
		t.AppendRow(table.Row{entry.Component, strings.Join(entry.Missing, ", ")})
	}
	t.Render()
	fmt.Fprintln(w)
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleRounded
	if f.options.Color {
		style.Color.Header = text.Colors{text.FgHiCyan}
		style.Color.Border = text.Colors{text.FgHiBlack}
	}
	t.SetStyle(style)
	return t
}

func (f *TableFormatter) colorize(color text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return color.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) string {
	return fmt.Sprintf("%s\n", f.colorize(text.FgYellow, message))
}
