// Package gitops versions a CSV data directory with git so every engine
// write becomes one commit.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	if out, err := git(ctx, dir, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Committer commits the data directory after each write.
type Committer struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// Commit stages everything under the directory and commits it. It returns
// the short hash, or "" when there was nothing to commit.
func (c *Committer) Commit(ctx context.Context, message string) (string, error) {
	if out, err := git(ctx, c.Dir, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	status, err := git(ctx, c.Dir, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("git status: %s: %w", status, err)
	}
	if strings.TrimSpace(status) == "" {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", c.AuthorName, c.AuthorEmail)
	args := []string{
		"-c", "user.name=" + c.AuthorName,
		"-c", "user.email=" + c.AuthorEmail,
		"commit", "--quiet", "-m", message, "--author", author,
	}
	if out, err := git(ctx, c.Dir, args...); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	hash, err := git(ctx, c.Dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %s: %w", hash, err)
	}
	return strings.TrimSpace(hash), nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
