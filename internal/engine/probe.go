// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/skaphos/spacesync/internal/gitx"
	"github.com/skaphos/spacesync/internal/model"
)

// Probe inspects the working copy of entry at path and returns its record.
// A fetch failure is reported through opts.OnEvent and does not change the
// outcome; classification then uses the last known remote refs.
func (e *Engine) Probe(ctx context.Context, entry model.IndexEntry, path string, opts Options) model.RepositoryRecord {
	rec := model.RepositoryRecord{
		Name:        entry.Name,
		Path:        model.OptionalString(path),
		IndexStatus: entry.LifecycleStatus(),
	}

	// The expected remote is reported for missing and git-backed working
	// copies only; a not_git record carries null.
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rec.Status = model.RepoMissing
			rec.Message = "Directory does not exist"
			rec.ExpectedRemote = model.OptionalString(entry.Remote)
			return rec
		}
		rec.Status = model.RepoNotGit
		rec.Message = err.Error()
		return rec
	}
	if !e.metadata.HasMetadata(path) {
		rec.Status = model.RepoNotGit
		rec.Message = "Not a git repository"
		return rec
	}
	rec.ExpectedRemote = model.OptionalString(entry.Remote)

	// A repository without the configured remote has no actual remote to compare.
	actual, err := e.adapter.RemoteURL(ctx, path, e.cfg.Defaults.RemoteName)
	if err != nil {
		actual = ""
	}
	rec.Remote = model.OptionalString(actual)
	if actual != "" && entry.Remote != "" && gitx.NormalizeURL(actual) != gitx.NormalizeURL(entry.Remote) {
		rec.Status = model.RepoRemoteMismatch
		rec.Message = fmt.Sprintf("Remote mismatch: expected %s, got %s", entry.Remote, actual)
		return rec
	}

	rec.Status = model.RepoOK
	opts.emit(Event{Kind: EventFetch, Repo: entry.Name, Phase: PhaseStart})
	fetchErr := e.adapter.FetchAll(ctx, path)
	opts.emit(Event{Kind: EventFetch, Repo: entry.Name, Phase: PhaseDone, Err: fetchErr})

	branches, err := e.adapter.LocalBranches(ctx, path)
	if err != nil {
		rec.Message = "Could not list branches: " + err.Error()
		return rec
	}
	current, err := e.adapter.CurrentBranch(ctx, path)
	if err != nil {
		current = ""
	}
	rec.Branches = make([]model.BranchRecord, 0, len(branches))
	for _, b := range branches {
		rec.Branches = append(rec.Branches, Classify(e.branchFacts(ctx, path, b, b == current)))
	}
	return rec
}

// BranchFacts holds everything Classify needs to know about one branch.
type BranchFacts struct {
	Name string
	// Current is true for the checked-out branch. Only it can be dirty.
	Current     bool
	DirtyFiles  int
	HasUpstream bool
	Ahead       int
	Behind      int
	// CountErr is the failure of either ahead/behind query.
	CountErr error
}

// branchFacts gathers facts in precedence order and stops as soon as a later
// query cannot change the classification.
func (e *Engine) branchFacts(ctx context.Context, dir, branch string, current bool) BranchFacts {
	facts := BranchFacts{Name: branch, Current: current}
	if current {
		// Unreadable status counts as clean.
		if n, err := e.adapter.DirtyFileCount(ctx, dir); err == nil {
			facts.DirtyFiles = n
		}
		if facts.DirtyFiles > 0 {
			return facts
		}
	}

	upstream, err := e.adapter.Upstream(ctx, dir, branch)
	if err != nil || upstream == "" {
		return facts
	}
	facts.HasUpstream = true

	ahead, err := e.adapter.RevListCount(ctx, dir, upstream, branch)
	if err != nil {
		facts.CountErr = err
		return facts
	}
	behind, err := e.adapter.RevListCount(ctx, dir, branch, upstream)
	if err != nil {
		facts.CountErr = err
		return facts
	}
	facts.Ahead, facts.Behind = ahead, behind
	return facts
}

// Classify maps branch facts to a record. Precedence: dirty, then missing
// upstream, then count failure, then the ahead/behind comparison.
func Classify(f BranchFacts) model.BranchRecord {
	rec := model.BranchRecord{Name: f.Name}
	switch {
	case f.Current && f.DirtyFiles > 0:
		rec.Status = model.BranchDirty
		rec.DirtyFiles = f.DirtyFiles
		rec.Message = fmt.Sprintf("%d uncommitted files", f.DirtyFiles)
	case !f.HasUpstream:
		rec.Status = model.BranchLocalOnly
		rec.Message = "No remote tracking branch"
	case f.CountErr != nil:
		rec.Status = model.BranchError
		rec.Message = f.CountErr.Error()
	case f.Ahead > 0 && f.Behind > 0:
		rec.Status = model.BranchDiverged
		rec.Ahead, rec.Behind = f.Ahead, f.Behind
		rec.Message = fmt.Sprintf("%d ahead, %d behind", f.Ahead, f.Behind)
	case f.Ahead > 0:
		rec.Status = model.BranchAhead
		rec.Ahead = f.Ahead
		rec.Message = fmt.Sprintf("%d commits to push", f.Ahead)
	case f.Behind > 0:
		rec.Status = model.BranchBehind
		rec.Behind = f.Behind
		rec.Message = fmt.Sprintf("%d commits to pull", f.Behind)
	default:
		rec.Status = model.BranchUpToDate
		rec.Message = "Up to date"
	}
	return rec
}
