package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage task images",
}

var imageAddCmd = &cobra.Command{
	Use:   "add <task-id> <url>",
	Short: "Attach an image reference to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		description, _ := cmd.Flags().GetString("description")
		err := Engine.AddImage(args[0], models.TaskImage{URL: args[1], Description: description})
		if err != nil {
			return err
		}
		fmt.Printf("Image added to %s\n", args[0])
		return nil
	},
}

var imageRemoveCmd = &cobra.Command{
	Use:   "remove <task-id> <index>",
	Short: "Remove an image by its position (0-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("parsing index %q: %w", args[1], err)
		}
		if err := Engine.RemoveImage(args[0], index); err != nil {
			return err
		}
		fmt.Printf("Image %d removed from %s\n", index, args[0])
		return nil
	},
}

var imageDescribeCmd = &cobra.Command{
	Use:   "describe <task-id> <index> <description>",
	Short: "Set the description of an attached image",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("parsing index %q: %w", args[1], err)
		}
		if err := Engine.SetImageDescription(args[0], index, args[2]); err != nil {
			return err
		}
		fmt.Printf("Image %d on %s described\n", index, args[0])
		return nil
	},
}

func init() {
	imageAddCmd.Flags().String("description", "", "image caption")

	imageCmd.AddCommand(imageAddCmd)
	imageCmd.AddCommand(imageRemoveCmd)
	imageCmd.AddCommand(imageDescribeCmd)

	rootCmd.AddCommand(imageCmd)
}
