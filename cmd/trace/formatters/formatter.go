package formatters

import (
	"fmt"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
)

// FormatOptions contains optional parameters for formatting results.
type FormatOptions struct {
	// RootDir makes displayed paths relative to the project root.
	RootDir string
	// Label is an optional title for graph output
	Label string
}

// Formatter is the interface that all result formatters must implement.
type Formatter interface {
	// Format converts an analysis result to its string representation.
	Format(result depgraph.ImportGraphResult, opts FormatOptions) (string, error)
}

// NewFormatter creates a Formatter for the specified format type.
func NewFormatter(format string) (Formatter, error) {
	f, ok := ParseOutputFormat(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, SupportedFormats())
	}

	switch f {
	case OutputFormatText:
		return &TextFormatter{}, nil
	case OutputFormatJSON:
		return &JSONFormatter{}, nil
	case OutputFormatDOT:
		return &DOTFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, SupportedFormats())
	}
}
