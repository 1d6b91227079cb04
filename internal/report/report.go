// Package report renders a reconciliation report for people and programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/skaphos/spacesync/internal/index"
	"github.com/skaphos/spacesync/internal/model"
	"github.com/skaphos/spacesync/internal/tableutil"
	"github.com/skaphos/spacesync/internal/termstyle"
)

const (
	ruleWidth       = 60
	summaryMinWidth = 21
)

type symbol struct {
	glyph string
	role  termstyle.Role
}

var branchSymbols = map[model.BranchStatus]symbol{
	model.BranchUpToDate:  {"✓", termstyle.Healthy},
	model.BranchAhead:     {"↑", termstyle.Info},
	model.BranchBehind:    {"↓", termstyle.Warn},
	model.BranchDiverged:  {"↕", termstyle.Error},
	model.BranchLocalOnly: {"+", termstyle.Info},
	model.BranchDirty:     {"!", termstyle.Warn},
	model.BranchError:     {"✗", termstyle.Error},
}

// Symbol returns the single-character marker for a branch state, "?" for
// unknown states.
func Symbol(status model.BranchStatus) string {
	if s, ok := branchSymbols[status]; ok {
		return s.glyph
	}
	return "?"
}

// WriteJSON writes the machine-readable form of report.
func WriteJSON(w io.Writer, report *model.Report) error {
	if report == nil {
		report = &model.Report{}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteText writes the grouped human-readable form of report: issues first,
// then healthy repositories with one line per branch, then unindexed
// repositories and a summary block.
func WriteText(w io.Writer, report *model.Report, palette *termstyle.Palette) error {
	if report == nil {
		report = &model.Report{}
	}
	var b strings.Builder
	heavy := strings.Repeat("=", ruleWidth)
	b.WriteString(heavy + "\nSPACES SYNC REPORT\n" + heavy + "\n\n")

	var issues, healthy []model.RepositoryRecord
	for _, repo := range report.Repos {
		switch {
		case repo.Status == model.RepoOK:
			healthy = append(healthy, repo)
		case repo.Status.IsIssue():
			issues = append(issues, repo)
		}
	}

	if len(issues) > 0 {
		b.WriteString("## Issues\n\n")
		for _, repo := range issues {
			fmt.Fprintf(&b, "  %s\n", repo.Name)
			fmt.Fprintf(&b, "    Status: %s\n", palette.Render(termstyle.Error, string(repo.Status)))
			fmt.Fprintf(&b, "    %s\n", repo.Message)
			if repo.ExpectedRemote != "" {
				fmt.Fprintf(&b, "    Remote: %s\n", repo.ExpectedRemote)
			}
			b.WriteString("\n")
		}
	}

	if len(healthy) > 0 {
		b.WriteString("## Repositories\n\n")
		for _, repo := range healthy {
			fmt.Fprintf(&b, "  %s (%s)\n", repo.Name, pluralBranches(len(repo.Branches)))
			for _, br := range repo.Branches {
				sym := Symbol(br.Status)
				if s, ok := branchSymbols[br.Status]; ok {
					sym = palette.Render(s.role, sym)
				}
				line := fmt.Sprintf("    %s %s", sym, br.Name)
				if br.Message != "" {
					line += " - " + br.Message
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\n")
		}
	}

	if len(report.NotInIndex) > 0 {
		b.WriteString("## Not in Index\n\n")
		for _, repo := range report.NotInIndex {
			fmt.Fprintf(&b, "  %s %s\n", palette.Render(termstyle.Muted, "?"), repo.Name)
			fmt.Fprintf(&b, "    Path: %s\n", repo.Path)
			if repo.Remote != "" {
				fmt.Fprintf(&b, "    Remote: %s\n", repo.Remote)
			}
			b.WriteString("\n")
		}
	}

	light := strings.Repeat("-", ruleWidth)
	b.WriteString(light + "\nSUMMARY\n" + light + "\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return writeSummary(w, report.Summary())
}

func writeSummary(w io.Writer, s model.Summary) error {
	tw := tableutil.New(w, summaryMinWidth)
	fmt.Fprintf(tw, "  Indexed repos:\t%d (%d ok, %d missing)\n", s.TotalIndexed, s.OK, s.Missing)
	fmt.Fprintf(tw, "  Remote-only:\t%d\n", s.RemoteOnly)
	fmt.Fprintf(tw, "  Not in index:\t%d\n", s.NotInIndex)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "  Branches ahead:\t%d\n", s.BranchesAhead)
	fmt.Fprintf(tw, "  Branches behind:\t%d\n", s.BranchesBehind)
	fmt.Fprintf(tw, "  Branches dirty:\t%d\n", s.BranchesDirty)
	fmt.Fprintf(tw, "  Branches diverged:\t%d\n", s.BranchesDiverged)
	fmt.Fprintf(tw, "  Local-only:\t%d\n", s.BranchesLocalOnly)
	return tw.Flush()
}

func pluralBranches(n int) string {
	if n == 1 {
		return "1 branch"
	}
	return fmt.Sprintf("%d branches", n)
}

// WriteSuggestions writes the unindexed repositories of report as entries
// ready to paste into the index block of document.
func WriteSuggestions(w io.Writer, report *model.Report, document, defaultBranch string) error {
	if report == nil || len(report.NotInIndex) == 0 {
		_, err := fmt.Fprintln(w, "All repos are in the index.")
		return err
	}
	text, err := index.Suggest(report.NotInIndex, defaultBranch)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# Add to %s Projects Index:\n\n", document); err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
