package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const syncCommandTimeout = 60 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the board with the remote table",
	Long: `Push local tasks to the remote table, pull remote tasks into the board, or
both. Merging never deletes: a task only disappears when explicitly deleted
and the deletion is pushed.`,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the full board to the remote table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), syncCommandTimeout)
		defer cancel()

		if err := Engine.Push(ctx); err != nil {
			return err
		}
		fmt.Printf("Pushed %d task(s)\n", len(Engine.Tasks()))
		return nil
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch the remote table and merge it into the board",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), syncCommandTimeout)
		defer cancel()

		if err := Engine.Pull(ctx); err != nil {
			return err
		}
		fmt.Printf("Board now has %d task(s)\n", len(Engine.Tasks()))
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Pull then push, converging both sides",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*syncCommandTimeout)
		defer cancel()

		if err := Engine.Sync(ctx); err != nil {
			return err
		}
		fmt.Printf("Sync complete, %d task(s) on the board\n", len(Engine.Tasks()))
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync configuration and last sync time",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		if !Engine.Configured() {
			fmt.Println("Mode:      local-only (no remote table configured)")
		} else if Config != nil && Config.Remote.Configured() {
			fmt.Println("Mode:      remote (hosted table)")
			fmt.Printf("Endpoint:  %s\n", Config.Remote.URL)
		} else if Config != nil && Config.LocalTablePath != "" {
			fmt.Println("Mode:      shared file (SQLite table)")
			fmt.Printf("Table:     %s\n", Config.LocalTablePath)
		} else {
			fmt.Println("Mode:      remote")
		}

		if last := Engine.LastSync(); !last.IsZero() {
			fmt.Printf("Last sync: %s\n", last.Format(time.RFC3339))
		} else {
			fmt.Println("Last sync: never")
		}
		fmt.Printf("Tasks:     %d\n", len(Engine.Tasks()))
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncStatusCmd)

	rootCmd.AddCommand(syncCmd)
}
