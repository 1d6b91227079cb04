// Package vcs exposes the version-control command surface the reconciliation
// engine depends on. Git is the only backend.
package vcs

import (
	"context"
	"time"

	"github.com/skaphos/spacesync/internal/gitx"
)

const (
	// DefaultTimeout bounds metadata queries, fetch, pull and push.
	DefaultTimeout = 30 * time.Second
	// DefaultCloneTimeout bounds clone.
	DefaultCloneTimeout = 120 * time.Second
)

// Adapter defines the VCS operations spacesync relies on.
type Adapter interface {
	Name() string
	RemoteURL(ctx context.Context, dir, remote string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	DirtyFileCount(ctx context.Context, dir string) (int, error)
	Upstream(ctx context.Context, dir, branch string) (string, error)
	RevListCount(ctx context.Context, dir, from, to string) (int, error)
	LocalBranches(ctx context.Context, dir string) ([]string, error)
	FetchAll(ctx context.Context, dir string) error
	Checkout(ctx context.Context, dir, branch string) error
	PullFastForward(ctx context.Context, dir string) error
	Push(ctx context.Context, dir, remote, branch string) error
	PushSetUpstream(ctx context.Context, dir, remote, branch string) error
	Clone(ctx context.Context, remoteURL, targetPath, branch string) error
}

// GitAdapter implements Adapter using the git CLI via gitx. Every call runs
// under its own deadline so a hung git process cannot stall the run.
type GitAdapter struct {
	Runner       gitx.Runner
	Timeout      time.Duration
	CloneTimeout time.Duration
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{
		Runner:       runner,
		Timeout:      DefaultTimeout,
		CloneTimeout: DefaultCloneTimeout,
	}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (g *GitAdapter) RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.RemoteURL(ctx, g.Runner, dir, remote)
}

func (g *GitAdapter) CurrentBranch(ctx context.Context, dir string) (string, error) {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.CurrentBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) DirtyFileCount(ctx context.Context, dir string) (int, error) {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.DirtyFileCount(ctx, g.Runner, dir)
}

func (g *GitAdapter) Upstream(ctx context.Context, dir, branch string) (string, error) {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.Upstream(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) RevListCount(ctx context.Context, dir, from, to string) (int, error) {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.RevListCount(ctx, g.Runner, dir, from, to)
}

func (g *GitAdapter) LocalBranches(ctx context.Context, dir string) ([]string, error) {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.LocalBranches(ctx, g.Runner, dir)
}

func (g *GitAdapter) FetchAll(ctx context.Context, dir string) error {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.FetchAll(ctx, g.Runner, dir)
}

func (g *GitAdapter) Checkout(ctx context.Context, dir, branch string) error {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.Checkout(ctx, g.Runner, dir, branch)
}

func (g *GitAdapter) PullFastForward(ctx context.Context, dir string) error {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.PullFastForward(ctx, g.Runner, dir)
}

func (g *GitAdapter) Push(ctx context.Context, dir, remote, branch string) error {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.Push(ctx, g.Runner, dir, remote, branch)
}

func (g *GitAdapter) PushSetUpstream(ctx context.Context, dir, remote, branch string) error {
	ctx, cancel := g.bounded(ctx, g.Timeout)
	defer cancel()
	return gitx.PushSetUpstream(ctx, g.Runner, dir, remote, branch)
}

func (g *GitAdapter) Clone(ctx context.Context, remoteURL, targetPath, branch string) error {
	ctx, cancel := g.bounded(ctx, g.CloneTimeout)
	defer cancel()
	return gitx.Clone(ctx, g.Runner, remoteURL, targetPath, branch)
}
