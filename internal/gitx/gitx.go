// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns its
	// trimmed stdout. A non-zero exit is reported as a *CommandError.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// CommandError describes a git invocation that exited non-zero or timed out.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace("git " + strings.Join(e.Args, " "))
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", cmdline, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", cmdline, e.Err)
	}
	return cmdline + ": failed"
}

func (e *CommandError) Unwrap() error { return e.Err }

// TimedOut reports whether err is a command that hit its deadline.
func TimedOut(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// DefaultWaitDelay bounds how long Run waits for output pipes to close after
// the context ends.
const DefaultWaitDelay = 2 * time.Second

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
	// WaitDelay overrides DefaultWaitDelay. Helpers started by git (ssh,
	// remote helpers, credential helpers) inherit its pipes and can outlive it.
	WaitDelay time.Duration
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	// Never block on a credential prompt; a missing credential is a failed command.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = g.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	killProcessGroupOnCancel(cmd)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &CommandError{Args: args, Stderr: "command timed out", Err: ctxErr}
		}
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RemoteURL returns the URL configured for the named remote.
func RemoteURL(ctx context.Context, r Runner, dir, remote string) (string, error) {
	out, err := r.Run(ctx, dir, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch, or "" when HEAD is detached.
func CurrentBranch(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DirtyFileCount returns the number of changed paths (tracked or untracked)
// in the working tree.
func DirtyFileCount(ctx context.Context, r Runner, dir string) (int, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return 0, err
	}
	return CountPorcelainEntries(out), nil
}

// Upstream returns the short name of branch's upstream tracking ref.
func Upstream(ctx context.Context, r Runner, dir, branch string) (string, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RevListCount returns the number of commits reachable from to but not from from.
func RevListCount(ctx context.Context, r Runner, dir, from, to string) (int, error) {
	out, err := r.Run(ctx, dir, "rev-list", "--count", from+".."+to)
	if err != nil {
		return 0, err
	}
	return ParseCount(out)
}

// LocalBranches lists local branch names.
func LocalBranches(ctx context.Context, r Runner, dir string) ([]string, error) {
	out, err := r.Run(ctx, dir, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return ParseBranchList(out), nil
}

// FetchAll refreshes every remote.
func FetchAll(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "fetch", "--all", "--quiet")
	return err
}

// Checkout switches the working tree to branch.
func Checkout(ctx context.Context, r Runner, dir, branch string) error {
	_, err := r.Run(ctx, dir, "checkout", branch)
	return err
}

// PullFastForward pulls the current branch, refusing to create a merge commit.
func PullFastForward(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "pull", "--ff-only")
	return err
}

// Push pushes branch to remote using the configured upstream.
func Push(ctx context.Context, r Runner, dir, remote, branch string) error {
	_, err := r.Run(ctx, dir, "push", remote, branch)
	return err
}

// PushSetUpstream pushes branch to remote and records it as upstream.
func PushSetUpstream(ctx context.Context, r Runner, dir, remote, branch string) error {
	_, err := r.Run(ctx, dir, "push", "-u", remote, branch)
	return err
}

// Clone clones a single branch of remoteURL into targetPath.
func Clone(ctx context.Context, r Runner, remoteURL, targetPath, branch string) error {
	args := []string{"clone"}
	if strings.TrimSpace(branch) != "" {
		args = append(args, "--branch", branch, "--single-branch")
	}
	args = append(args, remoteURL, targetPath)
	_, err := r.Run(ctx, "", args...)
	return err
}
