package vcs

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// FileSystem is the read capability used by the import graph analyzer.
// Implementations take absolute paths and must not mutate anything.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	FileExists(path string) bool
	DirectoryExists(path string) bool
	// ReadDirectory returns the sorted names of the immediate children of path.
	ReadDirectory(path string) ([]string, error)
}

type aferoFileSystem struct {
	fs afero.Fs
}

// NewOSFileSystem returns a read-only FileSystem backed by the real
// filesystem.
func NewOSFileSystem() FileSystem {
	return NewAferoFileSystem(afero.NewReadOnlyFs(afero.NewOsFs()))
}

// NewAferoFileSystem wraps an existing afero filesystem, for example an
// afero.NewBasePathFs view of a checkout.
func NewAferoFileSystem(fs afero.Fs) FileSystem {
	return &aferoFileSystem{fs: fs}
}

// NewMemoryFileSystem returns an in-memory FileSystem seeded with files,
// keyed by absolute path. Parent directories are created implicitly.
func NewMemoryFileSystem(files map[string]string) (FileSystem, error) {
	fs := afero.NewMemMapFs()
	for path, content := range files {
		native := filepath.FromSlash(path)
		if err := fs.MkdirAll(filepath.Dir(native), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := afero.WriteFile(fs, native, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return &aferoFileSystem{fs: fs}, nil
}

func (a *aferoFileSystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(a.fs, filepath.FromSlash(path))
}

func (a *aferoFileSystem) FileExists(path string) bool {
	info, err := a.fs.Stat(filepath.FromSlash(path))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (a *aferoFileSystem) DirectoryExists(path string) bool {
	ok, err := afero.IsDir(a.fs, filepath.FromSlash(path))
	return err == nil && ok
}

func (a *aferoFileSystem) ReadDirectory(path string) ([]string, error) {
	infos, err := afero.ReadDir(a.fs, filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

var _ FileSystem = (*aferoFileSystem)(nil)
