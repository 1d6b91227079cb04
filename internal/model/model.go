// Package model defines the core data types used throughout spacesync.
package model

import (
	"encoding/json"
	"strings"
)

// BranchStatus enumerates the classification states of a local branch.
type BranchStatus string

const (
	BranchUpToDate  BranchStatus = "up_to_date"
	BranchAhead     BranchStatus = "ahead"
	BranchBehind    BranchStatus = "behind"
	BranchDiverged  BranchStatus = "diverged"
	BranchLocalOnly BranchStatus = "local_only"
	BranchDirty     BranchStatus = "dirty"
	BranchError     BranchStatus = "error"
)

// AllBranchStatuses returns the closed set of branch states in display order.
func AllBranchStatuses() []BranchStatus {
	return []BranchStatus{
		BranchUpToDate,
		BranchAhead,
		BranchBehind,
		BranchDiverged,
		BranchLocalOnly,
		BranchDirty,
		BranchError,
	}
}

// Valid reports whether s is one of the known branch states.
func (s BranchStatus) Valid() bool {
	for _, known := range AllBranchStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// RepoStatus enumerates the reconciliation states of an indexed repository.
type RepoStatus string

const (
	RepoOK             RepoStatus = "ok"
	RepoMissing        RepoStatus = "missing"
	RepoNotGit         RepoStatus = "not_git"
	RepoRemoteMismatch RepoStatus = "remote_mismatch"
	RepoRemoteOnly     RepoStatus = "remote_only"
	RepoNotInIndex     RepoStatus = "not_in_index"
)

// AllRepoStatuses returns the closed set of repository states.
func AllRepoStatuses() []RepoStatus {
	return []RepoStatus{
		RepoOK,
		RepoMissing,
		RepoNotGit,
		RepoRemoteMismatch,
		RepoRemoteOnly,
		RepoNotInIndex,
	}
}

// Valid reports whether s is one of the known repository states.
func (s RepoStatus) Valid() bool {
	for _, known := range AllRepoStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsIssue reports whether the state needs operator attention.
func (s RepoStatus) IsIssue() bool {
	return s != RepoOK && s != RepoRemoteOnly
}

// OptionalString is a string that encodes as JSON null when empty.
type OptionalString string

// MarshalJSON implements json.Marshaler.
func (s OptionalString) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *OptionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = OptionalString(raw)
	return nil
}

// String returns the underlying value.
func (s OptionalString) String() string { return string(s) }

// RemoteOnlyLifecycle is the lifecycle label for entries that are never cloned locally.
const RemoteOnlyLifecycle = "remote-only"

// Field is an index key/value pair that spacesync does not interpret.
type Field struct {
	Key   string
	Value string
}

// IndexEntry is one declared repository expectation from the projects index.
type IndexEntry struct {
	// Name is the unique key of the entry.
	Name string
	// Path is the project-root-relative code path ("code" key). Empty means remote-only.
	Path string
	// Remote is the expected remote URL.
	Remote string
	// Branch is the declared branch. Empty means the configured default.
	Branch string
	// Status is the free-text lifecycle label (active, on-hold, archived, remote-only, ...).
	Status string
	// Extra holds unknown keys in document order.
	Extra []Field
}

// EffectiveBranch returns the declared branch or def when none was declared.
func (e IndexEntry) EffectiveBranch(def string) string {
	if b := strings.TrimSpace(e.Branch); b != "" {
		return b
	}
	return def
}

// LifecycleStatus returns the lifecycle label, "unknown" when absent.
func (e IndexEntry) LifecycleStatus() string {
	if s := strings.TrimSpace(e.Status); s != "" {
		return s
	}
	return "unknown"
}

// RemoteOnly reports whether the entry is tracked only as metadata.
func (e IndexEntry) RemoteOnly() bool {
	return e.Status == RemoteOnlyLifecycle || strings.TrimSpace(e.Path) == ""
}

// BranchRecord is the classification of one local branch.
type BranchRecord struct {
	Name       string       `json:"name"`
	Status     BranchStatus `json:"status"`
	Ahead      int          `json:"ahead"`
	Behind     int          `json:"behind"`
	DirtyFiles int          `json:"dirty_files"`
	Message    string       `json:"message"`
}

// RepositoryRecord is the reconciliation result for one index entry.
type RepositoryRecord struct {
	Name   string     `json:"name"`
	Status RepoStatus `json:"status"`
	// Path is the absolute on-disk location. Empty for remote-only entries.
	Path OptionalString `json:"path"`
	// Remote is the actual remote URL read from the working copy.
	Remote         OptionalString `json:"remote"`
	ExpectedRemote OptionalString `json:"expected_remote"`
	Message        string         `json:"message"`
	// IndexStatus is the lifecycle label copied from the index.
	IndexStatus string `json:"index_status"`
	// Branches is non-empty only when Status is RepoOK.
	Branches []BranchRecord `json:"branches"`
}

// UnindexedRepository is an on-disk repository that no index entry references.
type UnindexedRepository struct {
	Name string `json:"name"`
	// Path is relative to the project root.
	Path   string         `json:"path"`
	Remote OptionalString `json:"remote"`
}

// Summary holds counts derived from a Report.
type Summary struct {
	TotalIndexed      int `json:"total_indexed"`
	RemoteOnly        int `json:"remote_only"`
	OK                int `json:"ok"`
	Missing           int `json:"missing"`
	NotInIndex        int `json:"not_in_index"`
	BranchesAhead     int `json:"branches_ahead"`
	BranchesBehind    int `json:"branches_behind"`
	BranchesDirty     int `json:"branches_dirty"`
	BranchesDiverged  int `json:"branches_diverged"`
	BranchesLocalOnly int `json:"branches_local_only"`
}

// Report is the aggregate output of one reconciliation run.
type Report struct {
	Repos      []RepositoryRecord    `json:"repos"`
	NotInIndex []UnindexedRepository `json:"not_in_index"`
}

// Summary recomputes the counts from Repos and NotInIndex.
func (r *Report) Summary() Summary {
	var s Summary
	if r == nil {
		return s
	}
	for _, repo := range r.Repos {
		switch repo.Status {
		case RepoRemoteOnly:
			s.RemoteOnly++
		case RepoOK:
			s.OK++
		case RepoMissing:
			s.Missing++
		}
		if repo.Status != RepoRemoteOnly {
			s.TotalIndexed++
		}
		for _, b := range repo.Branches {
			switch b.Status {
			case BranchAhead:
				s.BranchesAhead++
			case BranchBehind:
				s.BranchesBehind++
			case BranchDirty:
				s.BranchesDirty++
			case BranchDiverged:
				s.BranchesDiverged++
			case BranchLocalOnly:
				s.BranchesLocalOnly++
			}
		}
	}
	s.NotInIndex = len(r.NotInIndex)
	return s
}

// MarshalJSON encodes the report with a freshly computed summary.
func (r Report) MarshalJSON() ([]byte, error) {
	repos := make([]RepositoryRecord, len(r.Repos))
	copy(repos, r.Repos)
	for i := range repos {
		if repos[i].Branches == nil {
			repos[i].Branches = []BranchRecord{}
		}
	}
	notInIndex := r.NotInIndex
	if notInIndex == nil {
		notInIndex = []UnindexedRepository{}
	}
	return json.Marshal(struct {
		Repos      []RepositoryRecord    `json:"repos"`
		NotInIndex []UnindexedRepository `json:"not_in_index"`
		Summary    Summary               `json:"summary"`
	}{
		Repos:      repos,
		NotInIndex: notInIndex,
		Summary:    r.Summary(),
	})
}
