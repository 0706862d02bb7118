package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Configure the remote task table",
	Long: `Configure where the board syncs to. Either a hosted PostgREST endpoint
(set with --url and --api-key) or a shared SQLite file (set with --table).
Changes take effect on the next invocation.`,
}

var remoteSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the remote connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil || Config == nil {
			return fmt.Errorf("configuration not initialized")
		}

		urlFlag, _ := cmd.Flags().GetString("url")
		keyFlag, _ := cmd.Flags().GetString("api-key")
		tableFlag, _ := cmd.Flags().GetString("table")

		if tableFlag == "" && (urlFlag == "" || keyFlag == "") {
			return fmt.Errorf("provide --url with --api-key, or --table for a shared file")
		}

		if urlFlag != "" {
			Config.Remote = models.RemoteConfig{
				URL:    strings.TrimRight(urlFlag, "/"),
				APIKey: keyFlag,
			}
		}
		if tableFlag != "" {
			Config.LocalTablePath = tableFlag
		}

		if err := ConfigMgr.Save(Config); err != nil {
			return err
		}
		fmt.Println("Remote configuration saved. It applies from the next command.")
		return nil
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the remote configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Config == nil {
			return fmt.Errorf("configuration not initialized")
		}

		if Config.Remote.Configured() {
			fmt.Printf("Endpoint: %s\n", Config.Remote.URL)
			fmt.Println("API key:  (set)")
		} else {
			fmt.Println("Endpoint: (not set)")
		}
		if Config.LocalTablePath != "" {
			fmt.Printf("Shared table: %s\n", Config.LocalTablePath)
		}
		if !Config.Remote.Configured() && Config.LocalTablePath == "" {
			fmt.Println("The board is local-only.")
		}
		return nil
	},
}

var remoteClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the remote connection and return to local-only mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil || Config == nil {
			return fmt.Errorf("configuration not initialized")
		}

		Config.Remote = models.RemoteConfig{}
		Config.LocalTablePath = ""
		if err := ConfigMgr.Save(Config); err != nil {
			return err
		}
		fmt.Println("Remote configuration cleared. Local data is untouched.")
		return nil
	},
}

func init() {
	remoteSetCmd.Flags().String("url", "", "PostgREST endpoint URL")
	remoteSetCmd.Flags().String("api-key", "", "service API key")
	remoteSetCmd.Flags().String("table", "", "path to a shared SQLite table file")

	remoteCmd.AddCommand(remoteSetCmd)
	remoteCmd.AddCommand(remoteShowCmd)
	remoteCmd.AddCommand(remoteClearCmd)

	rootCmd.AddCommand(remoteCmd)
}
