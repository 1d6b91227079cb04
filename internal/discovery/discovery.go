// Package discovery finds git working copies directly under the tracked
// repositories directory.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/spacesync/internal/gitx"
)

// MetadataReader answers repository questions without running git.
type MetadataReader interface {
	HasMetadata(dir string) bool
	RemoteURL(dir, remote string) (string, error)
}

// Result represents a discovered working copy.
type Result struct {
	Name    string // directory name of the working copy
	Path    string // absolute path
	RelPath string // slash-separated path relative to the project root
	Remote  string // URL of the configured remote, empty when unknown
}

// Options configures the discovery scan.
type Options struct {
	// Root is the directory whose immediate children are scanned.
	Root string
	// ProjectRoot anchors RelPath and exclude matching. Defaults to the parent of Root.
	ProjectRoot string
	// Exclude holds doublestar patterns matched against RelPath.
	Exclude    []string
	RemoteName string
	Metadata   MetadataReader
}

// Scan returns the working copies found under opts.Root in directory order. A
// child directory is a working copy when it has git metadata itself, or when
// exactly one of its own children does. A missing root yields no results.
func Scan(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Metadata == nil {
		opts.Metadata = gitx.Metadata{}
	}
	if opts.RemoteName == "" {
		opts.RemoteName = "origin"
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	projectRoot := opts.ProjectRoot
	if projectRoot == "" {
		projectRoot = filepath.Dir(root)
	}
	if projectRoot, err = filepath.Abs(projectRoot); err != nil {
		return nil, err
	}

	children, err := subdirs(root)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, dir := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := relPath(projectRoot, dir)
		if MatchesExclude(rel, opts.Exclude) {
			continue
		}
		repo, ok, err := resolveRepo(dir, projectRoot, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		remote, err := opts.Metadata.RemoteURL(repo, opts.RemoteName)
		if err != nil {
			remote = ""
		}
		results = append(results, Result{
			Name:    filepath.Base(repo),
			Path:    repo,
			RelPath: relPath(projectRoot, repo),
			Remote:  remote,
		})
	}
	return results, nil
}

// resolveRepo applies the one-level-deep rule to a direct child of the root.
func resolveRepo(dir, projectRoot string, opts Options) (string, bool, error) {
	if opts.Metadata.HasMetadata(dir) {
		return dir, true, nil
	}
	nested, err := subdirs(dir)
	if err != nil {
		return "", false, err
	}
	var found []string
	for _, child := range nested {
		if MatchesExclude(relPath(projectRoot, child), opts.Exclude) {
			continue
		}
		if opts.Metadata.HasMetadata(child) {
			found = append(found, child)
		}
	}
	if len(found) != 1 {
		return "", false, nil
	}
	return found[0], true, nil
}

// subdirs lists the directories directly inside dir, following symlinks.
func subdirs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !entry.IsDir() {
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}

func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}
