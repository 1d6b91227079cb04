package gitx

import (
	"fmt"
	"strconv"
	"strings"
)

// CountPorcelainEntries counts the changed paths in `git status --porcelain`
// output. Each non-empty line is one path.
func CountPorcelainEntries(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		count++
	}
	return count
}

// ParseCount parses the single integer printed by `git rev-list --count`.
func ParseCount(output string) (int, error) {
	output = strings.TrimSpace(output)
	n, err := strconv.Atoi(output)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("unexpected rev-list count %q", output)
	}
	return n, nil
}

// ParseBranchList parses one branch name per line, skipping blanks and the
// "(HEAD detached ...)" pseudo entry.
func ParseBranchList(output string) []string {
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "(") {
			continue
		}
		branches = append(branches, name)
	}
	return branches
}
