package report_test

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/spacesync/internal/model"
	"github.com/skaphos/spacesync/internal/report"
	"github.com/skaphos/spacesync/internal/termstyle"
)

func sampleReport() *model.Report {
	return &model.Report{
		Repos: []model.RepositoryRecord{
			{Name: "foo", Status: model.RepoOK, Path: "/p/spaces/foo", Remote: "https://host/foo", ExpectedRemote: "https://host/foo", IndexStatus: "active", Branches: []model.BranchRecord{
				{Name: "main", Status: model.BranchBehind, Behind: 2, Message: "2 commits to pull"},
				{Name: "wip", Status: model.BranchLocalOnly, Message: "No remote tracking branch"},
			}},
			{Name: "gone", Status: model.RepoMissing, Path: "/p/spaces/gone", ExpectedRemote: "https://host/gone", Message: "Directory does not exist", IndexStatus: "active"},
			{Name: "bar", Status: model.RepoRemoteOnly, ExpectedRemote: "https://host/bar", Message: "Tracked remotely, not cloned locally", IndexStatus: "remote-only"},
			{Name: "solo", Status: model.RepoOK, Path: "/p/spaces/solo", Branches: []model.BranchRecord{
				{Name: "main", Status: model.BranchUpToDate, Message: "Up to date"},
			}},
		},
		NotInIndex: []model.UnindexedRepository{{Name: "baz", Path: "spaces/baz", Remote: "https://host/baz"}},
	}
}

var _ = Describe("WriteText", func() {
	It("groups issues, repositories, unindexed repositories and a summary", func() {
		var buf bytes.Buffer
		Expect(report.WriteText(&buf, sampleReport(), termstyle.NewPalette(&buf, false))).To(Succeed())

		heavy := strings.Repeat("=", 60)
		light := strings.Repeat("-", 60)
		want := strings.Join([]string{
			heavy,
			"SPACES SYNC REPORT",
			heavy,
			"",
			"## Issues",
			"",
			"  gone",
			"    Status: missing",
			"    Directory does not exist",
			"    Remote: https://host/gone",
			"",
			"## Repositories",
			"",
			"  foo (2 branches)",
			"    ↓ main - 2 commits to pull",
			"    + wip - No remote tracking branch",
			"",
			"  solo (1 branch)",
			"    ✓ main - Up to date",
			"",
			"## Not in Index",
			"",
			"  ? baz",
			"    Path: spaces/baz",
			"    Remote: https://host/baz",
			"",
			light,
			"SUMMARY",
			light,
			"  Indexed repos:     3 (2 ok, 1 missing)",
			"  Remote-only:       1",
			"  Not in index:      1",
			"",
			"  Branches ahead:    0",
			"  Branches behind:   1",
			"  Branches dirty:    0",
			"  Branches diverged: 0",
			"  Local-only:        1",
			"",
		}, "\n")
		Expect(cmp.Diff(want, buf.String())).To(BeEmpty())
	})

	It("omits empty sections", func() {
		var buf bytes.Buffer
		Expect(report.WriteText(&buf, &model.Report{}, nil)).To(Succeed())
		out := buf.String()
		Expect(out).NotTo(ContainSubstring("## Issues"))
		Expect(out).NotTo(ContainSubstring("## Repositories"))
		Expect(out).NotTo(ContainSubstring("## Not in Index"))
		Expect(out).To(ContainSubstring("Indexed repos:     0 (0 ok, 0 missing)"))
	})

	It("colors branch symbols when enabled", func() {
		var buf bytes.Buffer
		Expect(report.WriteText(&buf, sampleReport(), termstyle.NewPalette(&buf, true))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("\x1b["))
		Expect(buf.String()).To(ContainSubstring("main - 2 commits to pull"))
	})
})

var _ = Describe("Symbol", func() {
	It("maps every branch state to a distinct marker", func() {
		seen := map[string]bool{}
		for _, s := range model.AllBranchStatuses() {
			sym := report.Symbol(s)
			Expect(sym).NotTo(Equal("?"), string(s))
			Expect(seen).NotTo(HaveKey(sym))
			seen[sym] = true
		}
		Expect(report.Symbol("sideways")).To(Equal("?"))
	})
})

var _ = Describe("WriteJSON", func() {
	It("writes indented JSON with the computed summary", func() {
		var buf bytes.Buffer
		Expect(report.WriteJSON(&buf, sampleReport())).To(Succeed())
		Expect(buf.String()).To(HavePrefix("{\n  \"repos\": ["))

		var decoded struct {
			Repos []struct {
				Name   string  `json:"name"`
				Status string  `json:"status"`
				Path   *string `json:"path"`
			} `json:"repos"`
			Summary model.Summary `json:"summary"`
		}
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded.Repos).To(HaveLen(4))
		Expect(decoded.Repos[1].Status).To(Equal("missing"))
		Expect(decoded.Repos[2].Path).To(BeNil())
		Expect(decoded.Summary).To(Equal(sampleReport().Summary()))
	})
})

var _ = Describe("WriteSuggestions", func() {
	It("renders unindexed repositories as index entries", func() {
		var buf bytes.Buffer
		Expect(report.WriteSuggestions(&buf, sampleReport(), "CLAUDE.md", "main")).To(Succeed())
		out := buf.String()
		Expect(out).To(HavePrefix("# Add to CLAUDE.md Projects Index:\n\n"))
		Expect(out).To(ContainSubstring("- name: baz\n"))
		Expect(out).To(ContainSubstring("code: spaces/baz/\n"))
		Expect(out).To(ContainSubstring("remote: https://host/baz\n"))
		Expect(out).To(ContainSubstring("branch: main\n"))
		Expect(out).To(ContainSubstring("status: active"))
		Expect(out).To(ContainSubstring("# or: on-hold, archived, experiment"))
	})

	It("reports when nothing is missing from the index", func() {
		var buf bytes.Buffer
		Expect(report.WriteSuggestions(&buf, &model.Report{}, "CLAUDE.md", "main")).To(Succeed())
		Expect(buf.String()).To(Equal("All repos are in the index.\n"))
	})
})
