package sortutil

import (
	"sort"

	"github.com/skaphos/spacesync/internal/model"
)

// LessPathName provides deterministic ordering by path first, then by name
// for entries that share a path.
func LessPathName(pathI, nameI, pathJ, nameJ string) bool {
	if pathI == pathJ {
		return nameI < nameJ
	}
	return pathI < pathJ
}

// SortUnindexed orders unindexed repositories by Path, then Name.
func SortUnindexed(repos []model.UnindexedRepository) {
	sort.SliceStable(repos, func(i, j int) bool {
		return LessPathName(repos[i].Path, repos[i].Name, repos[j].Path, repos[j].Name)
	})
}
