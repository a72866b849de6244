// Package git wraps the git binary behind a narrow interface.
package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for local git commands.
	GitCommandTimeout = 10 * time.Second

	// GitNetworkTimeout applies to commands that talk to a remote.
	GitNetworkTimeout = 60 * time.Second

	// DefaultRemote is the remote used for push.
	DefaultRemote = "origin"
)

// ChangeSet is the diff and status captured at invocation time.
type ChangeSet struct {
	Diff   string
	Status []StatusEntry
}

// IsEmpty reports whether there is nothing to commit.
func (c *ChangeSet) IsEmpty() bool {
	return c == nil || (strings.TrimSpace(c.Diff) == "" && len(c.Status) == 0)
}

// StatusText renders the status entries back into porcelain lines.
func (c *ChangeSet) StatusText() string {
	if c == nil {
		return ""
	}
	lines := make([]string, 0, len(c.Status))
	for _, e := range c.Status {
		lines = append(lines, e.String())
	}
	return strings.Join(lines, "\n")
}

// Client defines the git operations CommitPilot needs.
type Client interface {
	StagedDiff(ctx context.Context) (string, error)
	WorkingDiff(ctx context.Context) (string, error)
	Status(ctx context.Context) ([]StatusEntry, error)
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, branch string) error
	GitDir(ctx context.Context) (string, error)
}

// DefaultClient implements Client using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// run executes git with args and returns stdout. On failure the returned
// error carries stderr (or combined output when combined is set).
func (c *DefaultClient) run(ctx context.Context, timeout time.Duration, combined bool, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	var (
		output []byte
		err    error
	)
	if combined {
		output, err = cmd.CombinedOutput()
	} else {
		output, err = cmd.Output()
	}
	apperrors.LogGitCommand(args, time.Since(start), err)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.NewTimeoutError(ctx.Err())
		}
		detail := string(output)
		var exitErr *exec.ExitError
		if !combined && errors.As(err, &exitErr) {
			detail = string(exitErr.Stderr)
		}
		return detail, apperrors.NewGitError(err, detail)
	}
	return string(output), nil
}

// StagedDiff returns the diff of the index against HEAD, or "" when nothing
// is staged.
func (c *DefaultClient) StagedDiff(ctx context.Context) (string, error) {
	out, err := c.run(ctx, GitCommandTimeout, false, "diff", "--cached")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// WorkingDiff returns the diff of the working tree against the index.
func (c *DefaultClient) WorkingDiff(ctx context.Context) (string, error) {
	out, err := c.run(ctx, GitCommandTimeout, false, "diff")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Status returns the parsed porcelain status of the working tree.
func (c *DefaultClient) Status(ctx context.Context) ([]StatusEntry, error) {
	out, err := c.run(ctx, GitCommandTimeout, false, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return ParseStatus(out), nil
}

// AddAll stages every change in the working tree, regardless of the
// directory git runs from (git add -A).
func (c *DefaultClient) AddAll(ctx context.Context) error {
	_, err := c.run(ctx, GitCommandTimeout, true, "add", "-A")
	return err
}

// Commit executes a git commit with the given message.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, GitCommandTimeout, true, "commit", "-m", message)
	return err
}

// Push pushes the current HEAD to branch on the default remote. A failed
// push leaves the local commit in place.
func (c *DefaultClient) Push(ctx context.Context, branch string) error {
	out, err := c.run(ctx, GitNetworkTimeout, true, "push", DefaultRemote, branch)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrTimeout) {
			return apperrors.NewPushError(branch, err, "")
		}
		var cause error = err
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Cause != nil {
			cause = appErr.Cause
		}
		return apperrors.NewPushError(branch, cause, out)
	}
	return nil
}

// GitDir returns the path of the repository's git directory.
func (c *DefaultClient) GitDir(ctx context.Context) (string, error) {
	out, err := c.run(ctx, GitCommandTimeout, false, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Capture reads status and diff once. The staged diff is preferred; when the
// index is clean the working tree diff is used instead.
func Capture(ctx context.Context, client Client) (*ChangeSet, error) {
	status, err := client.Status(ctx)
	if err != nil {
		return nil, err
	}

	diff, err := client.StagedDiff(ctx)
	if err != nil {
		return nil, err
	}
	if diff == "" {
		diff, err = client.WorkingDiff(ctx)
		if err != nil {
			return nil, err
		}
	}

	return &ChangeSet{Diff: diff, Status: status}, nil
}
