package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
)

// JSONFormatter formats results as JSON with absolute paths.
type JSONFormatter struct{}

// Format converts the result to indented JSON.
// The opts parameter is accepted for interface compatibility but not used.
func (f *JSONFormatter) Format(result depgraph.ImportGraphResult, opts FormatOptions) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
