package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skaphos/spacesync/internal/model"
)

// clone creates the missing working copy of entry at path.
func (e *Engine) clone(ctx context.Context, entry model.IndexEntry, path string, opts Options) bool {
	branch := entry.EffectiveBranch(e.cfg.Defaults.Branch)
	opts.emit(Event{Kind: EventClone, Repo: entry.Name, Branch: branch, Phase: PhaseStart})
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		err = e.adapter.Clone(ctx, entry.Remote, path, branch)
	}
	opts.emit(Event{Kind: EventClone, Repo: entry.Name, Branch: branch, Phase: PhaseDone, Err: err})
	return err == nil
}

// applyBranchActions runs at most one action per branch. A failed action
// leaves the branch record as classified.
func (e *Engine) applyBranchActions(ctx context.Context, rec *model.RepositoryRecord, path string, opts Options) {
	for i := range rec.Branches {
		b := &rec.Branches[i]
		switch {
		case b.Status == model.BranchBehind && opts.Pull:
			e.pull(ctx, rec.Name, path, b, opts)
		case b.Status == model.BranchAhead && opts.Push:
			e.push(ctx, rec.Name, path, b, opts)
		case b.Status == model.BranchLocalOnly && opts.Push:
			e.pushNew(ctx, rec.Name, path, b, opts)
		}
	}
}

func (e *Engine) pull(ctx context.Context, repo, path string, b *model.BranchRecord, opts Options) {
	opts.emit(Event{Kind: EventPull, Repo: repo, Branch: b.Name, Phase: PhaseStart})
	err := e.checkoutIfNeeded(ctx, path, b.Name)
	if err == nil {
		err = e.adapter.PullFastForward(ctx, path)
	}
	opts.emit(Event{Kind: EventPull, Repo: repo, Branch: b.Name, Phase: PhaseDone, Err: err})
	if err != nil {
		return
	}
	b.Status = model.BranchUpToDate
	b.Message = fmt.Sprintf("Pulled %d commits", b.Behind)
	b.Behind = 0
}

// checkoutIfNeeded switches to branch unless it is already checked out.
func (e *Engine) checkoutIfNeeded(ctx context.Context, path, branch string) error {
	current, err := e.adapter.CurrentBranch(ctx, path)
	if err == nil && current == branch {
		return nil
	}
	return e.adapter.Checkout(ctx, path, branch)
}

func (e *Engine) push(ctx context.Context, repo, path string, b *model.BranchRecord, opts Options) {
	opts.emit(Event{Kind: EventPush, Repo: repo, Branch: b.Name, Phase: PhaseStart})
	err := e.adapter.Push(ctx, path, e.cfg.Defaults.RemoteName, b.Name)
	opts.emit(Event{Kind: EventPush, Repo: repo, Branch: b.Name, Phase: PhaseDone, Err: err})
	if err != nil {
		return
	}
	b.Status = model.BranchUpToDate
	b.Message = fmt.Sprintf("Pushed %d commits", b.Ahead)
	b.Ahead = 0
}

func (e *Engine) pushNew(ctx context.Context, repo, path string, b *model.BranchRecord, opts Options) {
	opts.emit(Event{Kind: EventPushNew, Repo: repo, Branch: b.Name, Phase: PhaseStart})
	err := e.adapter.PushSetUpstream(ctx, path, e.cfg.Defaults.RemoteName, b.Name)
	opts.emit(Event{Kind: EventPushNew, Repo: repo, Branch: b.Name, Phase: PhaseDone, Err: err})
	if err != nil {
		return
	}
	b.Status = model.BranchUpToDate
	b.Message = "Pushed new branch"
}
