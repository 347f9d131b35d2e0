package formatters

import (
	"path"
	"strings"
)

// DisplayPath shows absolutePath relative to rootDir when it lies inside it.
func DisplayPath(rootDir, absolutePath string) string {
	if rootDir == "" || absolutePath == "" {
		return absolutePath
	}
	rootDir = strings.TrimSuffix(rootDir, "/")
	if rel, ok := strings.CutPrefix(absolutePath, rootDir+"/"); ok {
		return rel
	}
	if absolutePath == rootDir {
		return "."
	}
	return path.Clean(absolutePath)
}
