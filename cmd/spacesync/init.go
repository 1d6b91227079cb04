// SPDX-License-Identifier: MIT
package spacesync

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/spacesync/internal/config"
	"github.com/skaphos/spacesync/internal/index"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default spacesync configuration",
	Long:  "Creates .spacesync.yaml in the project root, or in the current directory when no index document is found.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		rootFlag, _ := cmd.Flags().GetString("root")

		root, err := initRoot(rootFlag)
		if err != nil {
			return err
		}
		cfgPath, err := config.InitConfigPath(flagConfig, root)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil {
			if !force {
				return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
			}
			if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove existing config %q: %w", cfgPath, err)
			}
		}

		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath); err != nil {
			return err
		}
		return nil
	},
}

// initRoot picks the directory for a new config: an explicit root, else the
// project root around the working directory, else the working directory.
func initRoot(override string) (string, error) {
	if override = strings.TrimSpace(override); override == "" {
		override = strings.TrimSpace(os.Getenv(index.RootEnvVar))
	}
	if override != "" {
		return override, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, err := index.FindRoot(cwd, "", config.DefaultConfig().Document); err == nil {
		return root, nil
	}
	return cwd, nil
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")
	initCmd.Flags().String("root", "", "directory to write the config into")

	rootCmd.AddCommand(initCmd)
}
