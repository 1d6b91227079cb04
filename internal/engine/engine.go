// Package engine reconciles the projects index with the working copies on
// disk. It probes each indexed repository, classifies its branches, applies
// the enabled corrective actions and lists repositories the index does not
// mention.
package engine

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/skaphos/spacesync/internal/config"
	"github.com/skaphos/spacesync/internal/discovery"
	"github.com/skaphos/spacesync/internal/gitx"
	"github.com/skaphos/spacesync/internal/model"
	"github.com/skaphos/spacesync/internal/sortutil"
	"github.com/skaphos/spacesync/internal/strutil"
	"github.com/skaphos/spacesync/internal/vcs"
)

// MetadataReader answers repository questions from disk without running git.
type MetadataReader interface {
	HasMetadata(dir string) bool
	RemoteURL(dir, remote string) (string, error)
}

// Engine is the reconciliation orchestrator.
type Engine struct {
	cfg      *config.Config
	adapter  vcs.Adapter
	metadata MetadataReader
}

// New creates a new Engine. Nil collaborators fall back to the git CLI
// adapter and the on-disk metadata reader.
func New(cfg *config.Config, adapter vcs.Adapter, metadata MetadataReader) *Engine {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if adapter == nil {
		adapter = vcs.NewGitAdapter(nil)
	}
	if metadata == nil {
		metadata = gitx.Metadata{}
	}
	return &Engine{cfg: cfg, adapter: adapter, metadata: metadata}
}

// EventKind names the step an Event reports on.
type EventKind string

const (
	EventProbe   EventKind = "probe"
	EventFetch   EventKind = "fetch"
	EventClone   EventKind = "clone"
	EventPull    EventKind = "pull"
	EventPush    EventKind = "push"
	EventPushNew EventKind = "push-new"
	EventScan    EventKind = "scan"
)

// Phase marks whether an Event opens or closes a step.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseDone  Phase = "done"
)

// Event is a progress notification. Done events carry the step error, if any,
// together with its coarse class.
type Event struct {
	Kind   EventKind
	Repo   string
	Branch string
	Phase  Phase
	Err    error
	Class  string
}

// Options configures a reconciliation run.
type Options struct {
	Pull  bool
	Push  bool
	Clone bool
	// Exclude is appended to the configured scanner exclude patterns.
	Exclude []string
	// OnEvent receives progress notifications in order. May be nil.
	OnEvent func(Event)
}

func (o Options) emit(ev Event) {
	if o.OnEvent == nil {
		return
	}
	if ev.Err != nil {
		ev.Class = gitx.ClassifyError(ev.Err)
	}
	o.OnEvent(ev)
}

// Reconcile processes entries in index order, one at a time, and then scans
// the tracked directory for unindexed repositories. Per-repository failures
// are recorded in the report; the returned error is reserved for failures of
// the run itself.
func (e *Engine) Reconcile(ctx context.Context, root string, entries []model.IndexEntry, opts Options) (*model.Report, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	report := &model.Report{Repos: make([]model.RepositoryRecord, 0, len(entries))}
	var indexed []string
	for _, entry := range entries {
		if entry.RemoteOnly() {
			report.Repos = append(report.Repos, remoteOnlyRecord(entry))
			continue
		}
		path := e.ResolvePath(root, entry)
		report.Repos = append(report.Repos, e.reconcileEntry(ctx, entry, path, opts))
		indexed = append(indexed, path)
	}

	unindexed, err := e.Unindexed(ctx, root, indexed, opts)
	if err != nil {
		return nil, err
	}
	report.NotInIndex = unindexed
	return report, nil
}

// ResolvePath returns the absolute working-copy location for entry.
func (e *Engine) ResolvePath(root string, entry model.IndexEntry) string {
	p := strings.TrimRight(strings.TrimSpace(entry.Path), "/")
	if p == "" {
		return ""
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func (e *Engine) reconcileEntry(ctx context.Context, entry model.IndexEntry, path string, opts Options) model.RepositoryRecord {
	opts.emit(Event{Kind: EventProbe, Repo: entry.Name, Phase: PhaseStart})
	rec := e.Probe(ctx, entry, path, opts)

	if rec.Status == model.RepoMissing && opts.Clone && entry.Remote != "" {
		if e.clone(ctx, entry, path, opts) {
			rec = e.Probe(ctx, entry, path, opts)
			if rec.Status != model.RepoMissing {
				rec.Message = "Cloned successfully"
			}
		}
	}

	if rec.Status == model.RepoOK {
		e.applyBranchActions(ctx, &rec, path, opts)
	}
	opts.emit(Event{Kind: EventProbe, Repo: entry.Name, Phase: PhaseDone})
	return rec
}

func remoteOnlyRecord(entry model.IndexEntry) model.RepositoryRecord {
	return model.RepositoryRecord{
		Name:           entry.Name,
		Status:         model.RepoRemoteOnly,
		ExpectedRemote: model.OptionalString(entry.Remote),
		Message:        "Tracked remotely, not cloned locally",
		IndexStatus:    entry.LifecycleStatus(),
	}
}

// Unindexed scans the tracked directory below root and returns the working
// copies whose resolved path is not among indexed, sorted by path.
func (e *Engine) Unindexed(ctx context.Context, root string, indexed []string, opts Options) ([]model.UnindexedRepository, error) {
	opts.emit(Event{Kind: EventScan, Phase: PhaseStart})
	results, err := discovery.Scan(ctx, discovery.Options{
		Root:        filepath.Join(root, filepath.FromSlash(e.cfg.SpacesDir)),
		ProjectRoot: root,
		Exclude:     strutil.MergeUnique(e.cfg.Exclude, opts.Exclude),
		RemoteName:  e.cfg.Defaults.RemoteName,
		Metadata:    e.metadata,
	})
	opts.emit(Event{Kind: EventScan, Phase: PhaseDone, Err: err})
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(indexed))
	for _, p := range indexed {
		known[canonicalPath(p)] = struct{}{}
	}
	out := make([]model.UnindexedRepository, 0, len(results))
	for _, res := range results {
		if _, ok := known[canonicalPath(res.Path)]; ok {
			continue
		}
		out = append(out, model.UnindexedRepository{
			Name:   res.Name,
			Path:   res.RelPath,
			Remote: model.OptionalString(res.Remote),
		})
	}
	sortutil.SortUnindexed(out)
	return out, nil
}

// canonicalPath resolves symlinks so two spellings of one directory compare
// equal. Paths that do not exist are only cleaned.
func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
