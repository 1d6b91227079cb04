// SPDX-License-Identifier: MIT
package spacesync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/spacesync/internal/config"
	"github.com/skaphos/spacesync/internal/engine"
	"github.com/skaphos/spacesync/internal/gitx"
	"github.com/skaphos/spacesync/internal/index"
	"github.com/skaphos/spacesync/internal/model"
	"github.com/skaphos/spacesync/internal/vcs"
)

func runReconcile(cmd *cobra.Command, _ []string) error {
	flags := parseReconcileFlags(cmd)

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	rootOverride := strings.TrimSpace(flags.root)
	if rootOverride == "" {
		rootOverride = strings.TrimSpace(os.Getenv(index.RootEnvVar))
	}
	searchFrom := cwd
	if rootOverride != "" {
		searchFrom = rootOverride
	}

	cfg, cfgPath, err := loadConfig(searchFrom)
	if err != nil {
		return err
	}
	if cfgPath != "" {
		debugf(cmd, "using config %s", cfgPath)
	}
	if flags.timeout > 0 {
		cfg.Defaults.TimeoutSeconds = flags.timeout
	}
	if flags.cloneTimeout > 0 {
		cfg.Defaults.CloneTimeoutSeconds = flags.cloneTimeout
	}

	root, err := index.FindRoot(cwd, rootOverride, cfg.Document)
	if err != nil {
		return err
	}
	docPath := filepath.Join(root, cfg.Document)
	content, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", docPath, err)
	}
	entries, err := index.Parse(string(content), index.Markers{Start: cfg.IndexStart, End: cfg.IndexEnd})
	if err != nil {
		return fmt.Errorf("%s: %w", docPath, err)
	}
	debugf(cmd, "loaded %d index entries from %s", len(entries), docPath)

	adapter := vcs.NewGitAdapter(nil)
	adapter.Timeout = cfg.Timeout()
	adapter.CloneTimeout = cfg.CloneTimeout()
	eng := engine.New(cfg, adapter, gitx.Metadata{})

	report, err := eng.Reconcile(commandContext(cmd), root, entries, engine.Options{
		Pull:    flags.pull,
		Push:    flags.push,
		Clone:   flags.clone,
		Exclude: flags.exclude,
		OnEvent: progressPrinter(cmd),
	})
	if err != nil {
		return err
	}
	writeReport(cmd, report, cfg, flags)
	return nil
}

func loadConfig(searchFrom string) (*config.Config, string, error) {
	cfgPath, err := config.ResolveConfigPath(flagConfig, searchFrom)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, cfgPath, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// progressPrinter reports corrective actions and failures on stderr so the
// report on stdout stays machine-readable.
func progressPrinter(cmd *cobra.Command) func(engine.Event) {
	return func(ev engine.Event) {
		target := ev.Repo
		if ev.Branch != "" && ev.Kind != engine.EventClone {
			target = ev.Repo + "/" + ev.Branch
		}
		if ev.Phase == engine.PhaseDone {
			if ev.Err != nil {
				infof(cmd, "  %s failed for %s (%s): %v", ev.Kind, describeTarget(target), ev.Class, ev.Err)
			}
			return
		}
		switch ev.Kind {
		case engine.EventClone:
			infof(cmd, "Cloning %s...", target)
		case engine.EventPull:
			infof(cmd, "Pulling %s...", target)
		case engine.EventPush:
			infof(cmd, "Pushing %s...", target)
		case engine.EventPushNew:
			infof(cmd, "Pushing new branch %s...", target)
		case engine.EventProbe:
			debugf(cmd, "Checking %s", target)
		case engine.EventFetch:
			debugf(cmd, "Fetching %s", target)
		case engine.EventScan:
			debugf(cmd, "Scanning for unindexed repositories")
		}
	}
}

func describeTarget(target string) string {
	if target == "" {
		return "scan"
	}
	return target
}

func writeReport(cmd *cobra.Command, report *model.Report, cfg *config.Config, flags reconcileFlags) {
	out := cmd.OutOrStdout()
	switch {
	case flags.json:
		logOutputWriteFailure(cmd, "json report", writeJSON(out, report))
	case flags.suggest:
		logOutputWriteFailure(cmd, "suggestions", writeSuggestions(out, report, cfg))
	default:
		logOutputWriteFailure(cmd, "text report", writeText(cmd, out, report))
	}
}
