// Package formatting renders strata's dependency reports for the command line.
//
// The same report can be rendered as a table (go-pretty), YAML or JSON, so
// command output can be read by people and by scripts.
package formatting

import (
	"fmt"
	"io"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatYAML  OutputFormat = "yaml"  // YAML output
	FormatJSON  OutputFormat = "json"  // JSON output
)

// OutputFormats lists every supported format, for flag help and validation.
var OutputFormats = []OutputFormat{FormatTable, FormatYAML, FormatJSON}

// ParseOutputFormat validates a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	for _, format := range OutputFormats {
		if string(format) == s {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (supported: table, yaml, json)", s)
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// Formatter writes dependency reports to an output stream
type Formatter interface {
	FormatOrder(w io.Writer, report OrderReport) error
	FormatCheck(w io.Writer, report CheckReport) error
}

// NewFormatter creates the appropriate formatter based on options
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
