package formatting

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatOrder writes the order as a YAML document
func (f *YAMLFormatter) FormatOrder(w io.Writer, report OrderReport) error {
	return f.encode(w, report)
}

// FormatCheck writes the check report as a YAML document
func (f *YAMLFormatter) FormatCheck(w io.Writer, report CheckReport) error {
	return f.encode(w, report)
}

func (f *YAMLFormatter) encode(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
