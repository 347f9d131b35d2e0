package trace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RawPath is a user-provided file path from CLI arguments.
type RawPath string

// AbsolutePath is a normalized absolute filesystem path.
type AbsolutePath string

func (p AbsolutePath) String() string {
	return string(p)
}

// PathResolver resolves raw user paths relative to the project root.
type PathResolver struct {
	rootDir      AbsolutePath
	allowOutside bool
}

// NewPathResolver anchors relative paths at rootDir. Unless allowOutside is
// set, resolved paths must stay within rootDir.
func NewPathResolver(rootDir string, allowOutside bool) (PathResolver, error) {
	if rootDir == "" {
		rootDir = "."
	}

	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return PathResolver{}, fmt.Errorf("failed to resolve root path: %w", err)
	}

	return PathResolver{
		rootDir:      AbsolutePath(filepath.Clean(absRootDir)),
		allowOutside: allowOutside,
	}, nil
}

func (r PathResolver) Resolve(path RawPath) (AbsolutePath, error) {
	pathStr := string(path)
	if pathStr == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	absPath := filepath.Clean(pathStr)
	if !filepath.IsAbs(pathStr) {
		absPath = filepath.Clean(filepath.Join(r.rootDir.String(), pathStr))
	}

	if !r.allowOutside {
		within, err := isWithinRoot(r.rootDir.String(), absPath)
		if err != nil {
			return "", err
		}
		if !within {
			return "", fmt.Errorf("path must be within the project root: %q", pathStr)
		}
	}
	return AbsolutePath(filepath.ToSlash(absPath)), nil
}

func isWithinRoot(rootDir, targetPath string) (bool, error) {
	rootDir = resolveSymlinks(filepath.Clean(rootDir))
	targetPath = resolveSymlinks(filepath.Clean(targetPath))

	rel, err := filepath.Rel(rootDir, targetPath)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate path %q: %w", targetPath, err)
	}
	if rel == "." {
		return true, nil
	}
	if rel == ".." {
		return false, nil
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return !filepath.IsAbs(rel), nil
}

func resolveSymlinks(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
