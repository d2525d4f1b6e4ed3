package formatting

import (
	"encoding/json"
	"io"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatOrder writes the order as indented JSON
func (f *JSONFormatter) FormatOrder(w io.Writer, report OrderReport) error {
	return f.encode(w, report)
}

// FormatCheck writes the check report as indented JSON
func (f *JSONFormatter) FormatCheck(w io.Writer, report CheckReport) error {
	return f.encode(w, report)
}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
