package depgraph

import (
	"fmt"
)

// ErrorType is the closed set of problems an analysis can report.
type ErrorType int

const (
	ErrorTSConfigNotFound ErrorType = iota
	ErrorTSConfigReadError
	ErrorTSConfigParseError
	ErrorPackageJSONNotFound
	ErrorPackageJSONParseError
	ErrorEntryNotFound
	ErrorFileReadError
)

var errorTypeNames = map[ErrorType]string{
	ErrorTSConfigNotFound:      "tsconfig_not_found",
	ErrorTSConfigReadError:     "tsconfig_read_error",
	ErrorTSConfigParseError:    "tsconfig_parse_error",
	ErrorPackageJSONNotFound:   "package_json_not_found",
	ErrorPackageJSONParseError: "package_json_parse_error",
	ErrorEntryNotFound:         "entry_not_found",
	ErrorFileReadError:         "file_read_error",
}

// ErrorTypes lists every error type in declaration order.
func ErrorTypes() []ErrorType {
	return []ErrorType{
		ErrorTSConfigNotFound,
		ErrorTSConfigReadError,
		ErrorTSConfigParseError,
		ErrorPackageJSONNotFound,
		ErrorPackageJSONParseError,
		ErrorEntryNotFound,
		ErrorFileReadError,
	}
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("error_type(%d)", int(t))
}

// IsFatal reports whether an error of this type aborts the whole analysis.
func (t ErrorType) IsFatal() bool {
	switch t {
	case ErrorTSConfigNotFound, ErrorTSConfigReadError, ErrorTSConfigParseError,
		ErrorPackageJSONNotFound, ErrorPackageJSONParseError:
		return true
	default:
		return false
	}
}

func (t ErrorType) MarshalText() ([]byte, error) {
	name, ok := errorTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown error type %d", int(t))
	}
	return []byte(name), nil
}

func (t *ErrorType) UnmarshalText(text []byte) error {
	for errorType, name := range errorTypeNames {
		if name == string(text) {
			*t = errorType
			return nil
		}
	}
	return fmt.Errorf("unknown error type %q", text)
}

// ImportGraphError is a problem recorded during an analysis. Path is empty
// when the problem is not tied to one file.
type ImportGraphError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
}

func (e ImportGraphError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}
