// Package cli implements the sockboard command-line interface on top of the
// reconciliation engine. Service instances are injected by the app wiring
// through the package-level variables in vars.go.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "sockboard",
	Short: "Local-first task board for sock sampling workshops",
	Long: `Sockboard tracks sock sampling jobs through the production pipeline:
preparing, connecting, material prep, sampling, post-processing, completion
and rework.

All state lives on this machine and every command works offline. Configure a
remote table with "sockboard remote set" to sync the board across devices;
edits merge without ever deleting a task one side has not seen.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sockboard %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
