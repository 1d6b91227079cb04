// SPDX-License-Identifier: MIT
package gitx

import (
	"errors"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// HasMetadata reports whether dir itself is the root of a git working copy,
// either with a .git directory or a gitdir pointer file.
func HasMetadata(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().IsRegular()
}

// Metadata reads repository configuration directly from disk without
// spawning git. It is used where a process per directory would be wasteful.
type Metadata struct{}

// HasMetadata reports whether dir is the root of a git working copy.
func (Metadata) HasMetadata(dir string) bool { return HasMetadata(dir) }

// RemoteURL returns the first URL of the named remote. It returns "" with a
// nil error when the repository has no such remote.
func (Metadata) RemoteURL(dir, remote string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return "", err
	}
	r, err := repo.Remote(remote)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", nil
		}
		return "", err
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}
