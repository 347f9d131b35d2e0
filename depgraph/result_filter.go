package depgraph

import (
	"strings"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph/languages/typescript"
)

// ResultFilter decides which visited files belong to the public file list.
type ResultFilter struct {
	ExcludePatterns []string
}

// Include reports whether a visited path is a public source file: a
// recognized source extension, not a test file or test directory, and not
// matching any exclusion substring.
func (f ResultFilter) Include(filePath string) bool {
	if !typescript.IsSourceFile(filePath) {
		return false
	}
	if typescript.IsTestFile(filePath) {
		return false
	}
	for _, pattern := range f.ExcludePatterns {
		if pattern != "" && strings.Contains(filePath, pattern) {
			return false
		}
	}
	return true
}
