package tsconfig

import (
	"path"
	"strings"
)

// Alias is one "paths" entry. Targets are absolute and may contain a single
// "*" that receives the text matched by the pattern's "*".
type Alias struct {
	Pattern string
	Targets []string
}

// Match reports whether specifier matches the alias pattern and, if so,
// returns the substituted candidate paths in declaration order.
func (a Alias) Match(specifier string) ([]string, bool) {
	star := strings.IndexByte(a.Pattern, '*')
	if star < 0 {
		if specifier != a.Pattern {
			return nil, false
		}
		return append([]string(nil), a.Targets...), true
	}

	prefix, suffix := a.Pattern[:star], a.Pattern[star+1:]
	if len(specifier) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(specifier, prefix) ||
		!strings.HasSuffix(specifier, suffix) {
		return nil, false
	}

	captured := specifier[len(prefix) : len(specifier)-len(suffix)]
	candidates := make([]string, 0, len(a.Targets))
	for _, target := range a.Targets {
		candidates = append(candidates, path.Clean(strings.Replace(target, "*", captured, 1)))
	}
	return candidates, true
}
