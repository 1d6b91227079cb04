// Package spacesync contains the Cobra command tree for the spacesync CLI.
package spacesync

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skaphos/spacesync/internal/index"
)

var (
	// Global flags
	flagVerbose int
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "spacesync",
	Short: "Reconcile a projects index with the git working copies under spaces/",
	Long: "spacesync reads the projects index embedded in CLAUDE.md, checks every indexed repository " +
		"and branch under the tracked directory, lists repositories missing from the index, and " +
		"optionally pulls, pushes and clones to converge.",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
	},
	RunE: runReconcile,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "override config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	addReconcileFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly exit code.
func ExecuteWithExitCode() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	stderr := rootCmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var notFound *index.NotFoundError
	if errors.As(err, &notFound) && len(notFound.Searched) != 1 {
		fmt.Fprintf(stderr, "Run from inside a project or pass --root (or set %s).\n", index.RootEnvVar)
	}
	return 1
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func shouldUseColorOutput(cmd *cobra.Command, jsonOutput bool) bool {
	if flagNoColor || jsonOutput {
		return false
	}
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}
