package spacesync

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/skaphos/spacesync/internal/config"
	"github.com/skaphos/spacesync/internal/model"
	"github.com/skaphos/spacesync/internal/report"
	"github.com/skaphos/spacesync/internal/termstyle"
)

// logOutputWriteFailure notes a failed report write at debug level. A closed
// pipe on stdout does not fail the run.
func logOutputWriteFailure(cmd *cobra.Command, context string, err error) {
	if err == nil {
		return
	}
	debugf(cmd, "ignored output write failure (%s): %v", context, err)
}

func writeJSON(w io.Writer, r *model.Report) error {
	return report.WriteJSON(w, r)
}

func writeSuggestions(w io.Writer, r *model.Report, cfg *config.Config) error {
	return report.WriteSuggestions(w, r, cfg.Document, cfg.Defaults.Branch)
}

func writeText(cmd *cobra.Command, w io.Writer, r *model.Report) error {
	palette := termstyle.NewPalette(w, shouldUseColorOutput(cmd, false))
	return report.WriteText(w, r, palette)
}
