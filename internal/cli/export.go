package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the full board to a YAML snapshot",
	Long: `Export the board (tasks plus sync metadata) to a YAML file. The snapshot
can be imported on another machine; importing merges, it never overwrites.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		state := Engine.Export()
		data, err := yaml.Marshal(state)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Printf("Exported %d task(s) to %s\n", len(state.Tasks), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a YAML snapshot into the board",
	Long: `Import a snapshot written by "sockboard export". Tasks merge with the same
rules as a sync pull: unknown ids are added, shared ids keep whichever
version was edited last, and nothing local is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		var state models.BoardState
		if err := yaml.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("decoding snapshot: %w", err)
		}

		count, err := Engine.Import(state)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s, board now has %d task(s)\n", args[0], count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
