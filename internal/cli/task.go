package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/sockboard/pkg/models"
)

// Status and priority badge styles for list output.
var (
	stylePreparing      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleConnecting     = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	styleMaterialPrep   = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	styleSampling       = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	stylePostProcessing = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleCompleted      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	styleRevision       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	styleUrgent = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleNormal = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	styleRevisedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func statusBadge(s models.TaskStatus) string {
	switch s {
	case models.StatusPreparing:
		return stylePreparing.Render(string(s))
	case models.StatusConnecting:
		return styleConnecting.Render(string(s))
	case models.StatusMaterialPrep:
		return styleMaterialPrep.Render(string(s))
	case models.StatusSampling:
		return styleSampling.Render(string(s))
	case models.StatusPostProcessing:
		return stylePostProcessing.Render(string(s))
	case models.StatusCompleted:
		return styleCompleted.Render(string(s))
	case models.StatusRevision:
		return styleRevision.Render(string(s))
	default:
		return string(s)
	}
}

func priorityBadge(p models.Priority) string {
	switch p {
	case models.PriorityUrgent:
		return styleUrgent.Render(string(p))
	case models.PriorityHigh:
		return styleHigh.Render(string(p))
	case models.PriorityLow:
		return styleLow.Render(string(p))
	default:
		return styleNormal.Render(string(p))
	}
}

var createCmd = &cobra.Command{
	Use:   "create <task-id>",
	Short: "Create a new sampling task",
	Long: `Create a new sampling task with the given id. New tasks start in the
preparing status. Specs, priority and deadline are set via flags.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		sizeFlag, _ := cmd.Flags().GetString("size")
		colorFlag, _ := cmd.Flags().GetString("color")
		otherFlag, _ := cmd.Flags().GetString("other")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		deadlineFlag, _ := cmd.Flags().GetString("deadline")

		task := models.Task{
			ID:       args[0],
			Specs:    models.TaskSpecs{Size: sizeFlag, Color: colorFlag, Other: otherFlag},
			Priority: models.Priority(priorityFlag),
		}
		if deadlineFlag != "" {
			deadline, err := parseDeadline(deadlineFlag)
			if err != nil {
				return err
			}
			task.Deadline = deadline
		}

		if err := Engine.Create(task); err != nil {
			return err
		}

		fmt.Printf("Created task %s\n", task.ID)
		created, err := Engine.Get(task.ID)
		if err == nil {
			fmt.Printf("  Status:   %s\n", created.Status)
			fmt.Printf("  Priority: %s\n", created.Priority)
			if !created.Deadline.IsZero() {
				fmt.Printf("  Deadline: %s\n", created.Deadline.Format("2006-01-02"))
			}
		}
		return nil
	},
}

// parseDeadline accepts a date or a full RFC 3339 timestamp.
func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing deadline %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks on the board",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		statusFlag, _ := cmd.Flags().GetString("status")
		priorityFlag, _ := cmd.Flags().GetString("priority")
		rangeFlag, _ := cmd.Flags().GetString("range")
		searchFlag, _ := cmd.Flags().GetString("search")

		filter := models.TaskFilter{
			Status:    models.TaskStatus(statusFlag),
			Priority:  models.Priority(priorityFlag),
			TimeRange: models.TimeRange(rangeFlag),
			Search:    searchFlag,
		}
		if statusFlag != "" && !models.ValidStatuses[filter.Status] {
			return fmt.Errorf("invalid status %q", statusFlag)
		}
		if priorityFlag != "" && !models.ValidPriorities[filter.Priority] {
			return fmt.Errorf("invalid priority %q", priorityFlag)
		}

		tasks := Engine.Filtered(filter)
		if len(tasks) == 0 {
			fmt.Println("No tasks match.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tSIZE\tCOLOR\tDEADLINE\t")
		for _, t := range tasks {
			deadline := "-"
			if !t.Deadline.IsZero() {
				deadline = t.Deadline.Format("2006-01-02")
			}
			id := t.ID
			if t.HasBeenRevised {
				id += styleRevisedMark.Render("*")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				id, statusBadge(t.Status), priorityBadge(t.Priority),
				t.Specs.Size, t.Specs.Color, deadline)
		}
		w.Flush()
		fmt.Printf("\n%d task(s). * = has been revised\n", len(tasks))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		task, err := Engine.Get(args[0])
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(task)
		if err != nil {
			return fmt.Errorf("encoding task: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task's specs, priority or deadline",
	Long: `Apply a partial update to a task. Only the flags given change; status
changes go through "sockboard status" so the workflow is enforced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		update := models.TaskUpdate{}

		if cmd.Flags().Changed("size") || cmd.Flags().Changed("color") || cmd.Flags().Changed("other") {
			task, err := Engine.Get(args[0])
			if err != nil {
				return err
			}
			specs := task.Specs
			if cmd.Flags().Changed("size") {
				specs.Size, _ = cmd.Flags().GetString("size")
			}
			if cmd.Flags().Changed("color") {
				specs.Color, _ = cmd.Flags().GetString("color")
			}
			if cmd.Flags().Changed("other") {
				specs.Other, _ = cmd.Flags().GetString("other")
			}
			update.Specs = &specs
		}
		if cmd.Flags().Changed("priority") {
			priorityFlag, _ := cmd.Flags().GetString("priority")
			update.Priority = models.Priority(priorityFlag)
		}
		if cmd.Flags().Changed("deadline") {
			deadlineFlag, _ := cmd.Flags().GetString("deadline")
			deadline, err := parseDeadline(deadlineFlag)
			if err != nil {
				return err
			}
			update.Deadline = &deadline
		}

		if err := Engine.Update(args[0], update); err != nil {
			return err
		}
		fmt.Printf("Updated task %s\n", args[0])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Move a task through the pipeline",
	Long: `Move a task to a new workflow state. Valid states: preparing, connecting,
material_prep, sampling, post_processing, completed, revision. Stages cannot
be skipped; any state may enter revision, and revision may re-enter any
pipeline state. A task that enters revision stays marked as revised.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		if err := Engine.UpdateStatus(args[0], models.TaskStatus(args[1])); err != nil {
			return err
		}
		fmt.Printf("Task %s is now %s\n", args[0], args[1])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Long: `Delete a task from the board. The removal propagates to the remote table
on the next push; there is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		if err := Engine.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s\n", args[0])
		return nil
	},
}

func init() {
	createCmd.Flags().String("size", "", "sock size spec, e.g. 39-42")
	createCmd.Flags().String("color", "", "yarn color spec")
	createCmd.Flags().String("other", "", "free-form spec details")
	createCmd.Flags().String("priority", "", "urgent, high, normal or low (default normal)")
	createCmd.Flags().String("deadline", "", "deadline as YYYY-MM-DD or RFC 3339")

	listCmd.Flags().String("status", "", "filter by status")
	listCmd.Flags().String("priority", "", "filter by priority")
	listCmd.Flags().String("range", "", "deadline window: week, month, quarter, year, all")
	listCmd.Flags().String("search", "", "case-insensitive match over id and specs")

	updateCmd.Flags().String("size", "", "sock size spec")
	updateCmd.Flags().String("color", "", "yarn color spec")
	updateCmd.Flags().String("other", "", "free-form spec details")
	updateCmd.Flags().String("priority", "", "urgent, high, normal or low")
	updateCmd.Flags().String("deadline", "", "deadline as YYYY-MM-DD or RFC 3339")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deleteCmd)
}
