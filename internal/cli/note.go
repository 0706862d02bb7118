package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage task notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <task-id> <text>",
	Short: "Append a note to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		if err := Engine.AddNote(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Note added to %s\n", args[0])
		return nil
	},
}

var noteRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <index>",
	Short: "Remove a note by its position (0-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("parsing index %q: %w", args[1], err)
		}
		if err := Engine.RemoveNote(args[0], index); err != nil {
			return err
		}
		fmt.Printf("Note %d removed from %s\n", index, args[0])
		return nil
	},
}

var processNoteCmd = &cobra.Command{
	Use:   "process-note",
	Short: "Manage craft process notes",
	Long: `Process notes record how a sample was made: needle sizes, tension, wash
settings. They live in their own sequence, separate from regular notes.`,
}

var processNoteAddCmd = &cobra.Command{
	Use:   "add <task-id> <text>",
	Short: "Append a process note to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		if err := Engine.AddProcessNote(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Process note added to %s\n", args[0])
		return nil
	},
}

var processNoteRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <index>",
	Short: "Remove a process note by its position (0-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("parsing index %q: %w", args[1], err)
		}
		if err := Engine.RemoveProcessNote(args[0], index); err != nil {
			return err
		}
		fmt.Printf("Process note %d removed from %s\n", index, args[0])
		return nil
	},
}

func init() {
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteRemoveCmd)
	processNoteCmd.AddCommand(processNoteAddCmd)
	processNoteCmd.AddCommand(processNoteRemoveCmd)

	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(processNoteCmd)
}
