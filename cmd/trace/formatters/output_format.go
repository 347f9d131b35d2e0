package formatters

import "strings"

// OutputFormat represents an output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatDOT  OutputFormat = "dot"
)

var allFormats = []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatDOT}

// String returns the string representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// ParseOutputFormat converts a flag value to an OutputFormat.
func ParseOutputFormat(value string) (OutputFormat, bool) {
	for _, f := range allFormats {
		if strings.EqualFold(value, f.String()) {
			return f, true
		}
	}
	return "", false
}

// SupportedFormats lists the accepted format names for help and errors.
func SupportedFormats() string {
	names := make([]string, 0, len(allFormats))
	for _, f := range allFormats {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
