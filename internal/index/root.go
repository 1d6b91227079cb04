// Package index locates the projects index document and converts its
// embedded entry block to and from model.IndexEntry values.
package index

import (
	"os"
	"path/filepath"
	"strings"
)

// RootEnvVar names the environment variable consulted when no --root is given.
const RootEnvVar = "SPACESYNC_ROOT"

// FindRoot resolves the project root that holds document. A non-empty
// override is used as-is and must contain the document; otherwise start and
// each of its parents are searched.
func FindRoot(start, override, document string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", err
		}
		if !isFile(filepath.Join(abs, document)) {
			return "", &NotFoundError{Document: document, Searched: []string{abs}}
		}
		return abs, nil
	}

	if strings.TrimSpace(start) == "" {
		var err error
		start, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	var searched []string
	for {
		searched = append(searched, dir)
		if isFile(filepath.Join(dir, document)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &NotFoundError{Document: document, Searched: searched}
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
