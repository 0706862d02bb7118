package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/sockboard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Expose the board as Model Context Protocol tools so AI assistants can
list, create and move tasks, add notes, and trigger syncs. The server speaks
the protocol on stdin/stdout and runs until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		server := mcp.NewServer(Engine, MetricsCalc, appVersion)
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
