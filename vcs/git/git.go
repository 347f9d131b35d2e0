package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// GetRepositoryRoot returns the absolute path to the repository root
func GetRepositoryRoot(ctx context.Context, repoPath string) (string, error) {
	stdout, err := execGit(ctx, repoPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(stdout)), nil
}

func validateGitRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("git reference cannot be empty")
	}
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("git reference cannot start with '-': %q", ref)
	}
	if strings.ContainsAny(ref, "\x00\n\r\t ") {
		return fmt.Errorf("git reference contains whitespace or NUL: %q", ref)
	}
	return nil
}

func validateGitRelPath(path string) error {
	if path == "" {
		return fmt.Errorf("git path cannot be empty")
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("git path must be relative: %q", path)
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("git path contains NUL: %q", path)
	}
	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("git path escapes repository: %q", path)
	}
	return nil
}

// validateCommit checks if the given commit reference exists in the repository
func validateCommit(ctx context.Context, repoPath, commitID string) error {
	if err := validateGitRef(commitID); err != nil {
		return err
	}

	_, err := execGit(ctx, repoPath, "rev-parse", "--verify", commitID+"^{commit}")
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return fmt.Errorf("invalid commit reference '%s': %w", commitID, err)
	}
	if err != nil {
		return err
	}

	return nil
}
