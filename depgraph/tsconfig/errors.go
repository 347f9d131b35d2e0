package tsconfig

import "fmt"

// ErrorKind classifies why a resolution context could not be loaded.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindReadError
	KindParseError
)

// ConfigError is returned by Load. Every ConfigError is fatal for an analysis.
type ConfigError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("no tsconfig.json found from %s", e.Path)
	case KindReadError:
		return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
