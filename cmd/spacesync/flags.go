package spacesync

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/spacesync/internal/strutil"
)

const (
	rootFlagUsage    = "project root holding the index document (default: nearest parent containing it, or $SPACESYNC_ROOT)"
	excludeFlagUsage = "comma-separated glob patterns of tracked-directory paths to leave out of the unindexed scan"
)

// reconcileFlags is the parsed form of the root command's own flags.
type reconcileFlags struct {
	pull, push, clone bool
	json, suggest     bool
	root              string
	exclude           []string
	timeout           int
	cloneTimeout      int
}

func addReconcileFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("check", false, "report only (default; no corrective action)")
	cmd.Flags().Bool("pull", false, "fast-forward branches that are behind their upstream")
	cmd.Flags().Bool("push", false, "push ahead branches and publish local-only branches")
	cmd.Flags().Bool("clone", false, "clone missing repositories that declare a remote")
	cmd.Flags().Bool("json", false, "write the report as JSON")
	cmd.Flags().Bool("suggest-additions", false, "print index entries for unindexed repositories instead of the report")
	cmd.Flags().String("root", "", rootFlagUsage)
	cmd.Flags().String("exclude", "", excludeFlagUsage)
	cmd.Flags().Int("timeout", 0, "per-command git timeout in seconds (default from config, 30)")
	cmd.Flags().Int("clone-timeout", 0, "git clone timeout in seconds (default from config, 120)")
}

func parseReconcileFlags(cmd *cobra.Command) reconcileFlags {
	var f reconcileFlags
	f.pull, _ = cmd.Flags().GetBool("pull")
	f.push, _ = cmd.Flags().GetBool("push")
	f.clone, _ = cmd.Flags().GetBool("clone")
	f.json, _ = cmd.Flags().GetBool("json")
	f.suggest, _ = cmd.Flags().GetBool("suggest-additions")
	f.root, _ = cmd.Flags().GetString("root")
	exclude, _ := cmd.Flags().GetString("exclude")
	f.exclude = strutil.SplitCSV(exclude)
	f.timeout, _ = cmd.Flags().GetInt("timeout")
	f.cloneTimeout, _ = cmd.Flags().GetInt("clone-timeout")
	return f
}
