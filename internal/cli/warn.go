package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var warnCmd = &cobra.Command{
	Use:   "warn",
	Short: "List tasks with deadlines inside the warning window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		if cmd.Flags().Changed("days") {
			days, _ := cmd.Flags().GetInt("days")
			if err := Engine.SetWarningDays(days); err != nil {
				return err
			}
			fmt.Printf("Warning window set to %d day(s)\n", days)
		}

		tasks := Engine.Upcoming()
		if len(tasks) == 0 {
			fmt.Printf("No deadlines within %d day(s).\n", Engine.WarningDays())
			return nil
		}

		now := time.Now().UTC()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tDEADLINE\tDUE IN\t")
		for _, t := range tasks {
			due := t.Deadline.Sub(now).Round(time.Hour)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				t.ID, statusBadge(t.Status), t.Deadline.Format("2006-01-02"), due)
		}
		w.Flush()
		return nil
	},
}

func init() {
	warnCmd.Flags().Int("days", 0, "set the warning window before listing")
	rootCmd.AddCommand(warnCmd)
}
