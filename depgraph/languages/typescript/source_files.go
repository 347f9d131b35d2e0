package typescript

import (
	"path"
	"strings"
)

// SourceExtensions lists module file extensions in resolution probe order.
var SourceExtensions = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs"}

var declarationSuffixes = []string{".d.ts", ".d.mts", ".d.cts"}

// nodeBuiltins contains known Node.js built-in module names
var nodeBuiltins = map[string]bool{
	"assert":         true,
	"buffer":         true,
	"child_process":  true,
	"cluster":        true,
	"crypto":         true,
	"dgram":          true,
	"dns":            true,
	"events":         true,
	"fs":             true,
	"http":           true,
	"https":          true,
	"net":            true,
	"os":             true,
	"path":           true,
	"querystring":    true,
	"readline":       true,
	"stream":         true,
	"string_decoder": true,
	"timers":         true,
	"tls":            true,
	"tty":            true,
	"url":            true,
	"util":           true,
	"v8":             true,
	"vm":             true,
	"zlib":           true,
	"worker_threads": true,
	"perf_hooks":     true,
	"async_hooks":    true,
	"fs/promises":    true,
	"path/posix":     true,
	"path/win32":     true,
}

// IsNodeBuiltin reports whether a bare specifier names a Node.js built-in module.
func IsNodeBuiltin(specifier string) bool {
	return strings.HasPrefix(specifier, "node:") || nodeBuiltins[specifier]
}

// IsRelative reports whether a specifier is relative (./, ../) or absolute.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

// IsDeclarationFile reports whether the path is a type-only declaration file.
func IsDeclarationFile(filePath string) bool {
	_, ok := declarationStem(filePath)
	return ok
}

// IsSourceFile reports whether the path is a TypeScript or JavaScript module
// with a runtime body. Declaration files are not source files.
func IsSourceFile(filePath string) bool {
	if IsDeclarationFile(filePath) {
		return false
	}
	ext := strings.ToLower(path.Ext(filePath))
	for _, sourceExt := range SourceExtensions {
		if ext == sourceExt {
			return true
		}
	}
	return false
}

// SourceSiblings returns the source files a declaration file may stand in
// for, in probe order: utils.d.ts -> utils.ts, utils.tsx, ...
func SourceSiblings(declarationPath string) []string {
	stem, ok := declarationStem(declarationPath)
	if !ok {
		return nil
	}
	siblings := make([]string, 0, len(SourceExtensions))
	for _, ext := range SourceExtensions {
		siblings = append(siblings, stem+ext)
	}
	return siblings
}

func declarationStem(filePath string) (string, bool) {
	lower := strings.ToLower(filePath)
	for _, suffix := range declarationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return filePath[:len(filePath)-len(suffix)], true
		}
	}
	return "", false
}

// OutputExtensionAlternatives maps an emitted JavaScript extension to the
// source extensions that produce it: ./utils.js may name utils.ts.
func OutputExtensionAlternatives(filePath string) (string, []string) {
	ext := path.Ext(filePath)
	stem := strings.TrimSuffix(filePath, ext)
	switch ext {
	case ".js":
		return stem, []string{".ts", ".tsx"}
	case ".jsx":
		return stem, []string{".tsx"}
	case ".mjs":
		return stem, []string{".mts"}
	case ".cjs":
		return stem, []string{".cts"}
	default:
		return "", nil
	}
}
