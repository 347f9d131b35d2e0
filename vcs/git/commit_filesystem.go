package git

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/pkgtrace/vcs"
)

// CommitFileSystem exposes the tree of a single commit as a read-only
// vcs.FileSystem. Paths are absolute, rooted at the repository root.
type CommitFileSystem struct {
	ctx      context.Context
	repoRoot string
	commitID string
	files    map[string]bool
	dirs     map[string][]string
}

// NewCommitFileSystem lists the commit tree once and serves existence and
// directory queries from that listing. File contents are read lazily with
// ctx, so cancelling it stops any git process still serving reads.
func NewCommitFileSystem(ctx context.Context, repoPath, commitID string) (*CommitFileSystem, error) {
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("repository path does not exist: %s", repoPath)
	}

	repoRoot, err := GetRepositoryRoot(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("%s is not a git repository: %w", repoPath, err)
	}

	if err := validateCommit(ctx, repoPath, commitID); err != nil {
		return nil, err
	}

	stdout, err := execGit(ctx, repoPath, "ls-tree", "-r", "-z", "--name-only", commitID)
	if err != nil {
		return nil, err
	}

	cfs := &CommitFileSystem{
		ctx:      ctx,
		repoRoot: filepath.ToSlash(repoRoot),
		commitID: commitID,
		files:    make(map[string]bool),
		dirs:     make(map[string][]string),
	}

	for _, line := range strings.Split(string(stdout), "\x00") {
		if line == "" {
			continue
		}
		cfs.addFile(path.Join(cfs.repoRoot, line))
	}

	for dir := range cfs.dirs {
		sort.Strings(cfs.dirs[dir])
	}

	return cfs, nil
}

func (c *CommitFileSystem) addFile(absPath string) {
	c.files[absPath] = true

	child := absPath
	for {
		parent := path.Dir(child)
		name := path.Base(child)
		_, seen := c.dirs[parent]
		if !containsName(c.dirs[parent], name) {
			c.dirs[parent] = append(c.dirs[parent], name)
		}
		if seen || parent == c.repoRoot || parent == child {
			return
		}
		child = parent
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ReadFile reads a file's content as of the commit.
func (c *CommitFileSystem) ReadFile(absPath string) ([]byte, error) {
	rel, err := c.relativePath(absPath)
	if err != nil {
		return nil, err
	}
	if err := validateGitRelPath(rel); err != nil {
		return nil, err
	}

	return execGit(c.ctx, c.repoRoot, "show", fmt.Sprintf("%s:%s", c.commitID, rel))
}

func (c *CommitFileSystem) FileExists(absPath string) bool {
	return c.files[path.Clean(filepath.ToSlash(absPath))]
}

func (c *CommitFileSystem) DirectoryExists(absPath string) bool {
	_, ok := c.dirs[path.Clean(filepath.ToSlash(absPath))]
	return ok
}

func (c *CommitFileSystem) ReadDirectory(absPath string) ([]string, error) {
	names, ok := c.dirs[path.Clean(filepath.ToSlash(absPath))]
	if !ok {
		return nil, fmt.Errorf("directory %s does not exist at %s", absPath, c.commitID)
	}
	return append([]string(nil), names...), nil
}

// RepositoryRoot returns the slash-separated repository root.
func (c *CommitFileSystem) RepositoryRoot() string {
	return c.repoRoot
}

func (c *CommitFileSystem) relativePath(absPath string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(absPath))
	rel := strings.TrimPrefix(cleaned, c.repoRoot+"/")
	if rel == cleaned {
		return "", fmt.Errorf("%s is outside repository %s", absPath, c.repoRoot)
	}
	return rel, nil
}

var _ vcs.FileSystem = (*CommitFileSystem)(nil)
