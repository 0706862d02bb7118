package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/sockboard/internal/observability"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent board activity from the event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		typeFlag, _ := cmd.Flags().GetString("type")
		sinceFlag, _ := cmd.Flags().GetDuration("since")

		filter := observability.EventFilter{Type: typeFlag}
		if sinceFlag > 0 {
			since := time.Now().UTC().Add(-sinceFlag)
			filter.Since = &since
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tDEVICE\tTYPE\tDATA\t")
		for _, e := range events {
			data := ""
			if len(e.Data) > 0 {
				encoded, _ := json.Marshal(e.Data)
				data = string(encoded)
			}
			fmt.Fprintf(w, "%s\t%.8s\t%s\t%s\t\n",
				e.Time.Format(time.RFC3339), e.Device, e.Type, data)
		}
		w.Flush()
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregated board activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics not initialized")
		}

		sinceFlag, _ := cmd.Flags().GetDuration("since")
		since := time.Now().UTC().Add(-sinceFlag)

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return err
		}

		fmt.Printf("Activity over the last %s:\n", sinceFlag)
		fmt.Printf("  Tasks created:    %d\n", m.TasksCreated)
		fmt.Printf("  Tasks completed:  %d\n", m.TasksCompleted)
		fmt.Printf("  Tasks deleted:    %d\n", m.TasksDeleted)
		fmt.Printf("  Revisions opened: %d\n", m.RevisionsOpened)
		fmt.Printf("  Pushes:           %d\n", m.Pushes)
		fmt.Printf("  Pulls:            %d\n", m.Pulls)
		fmt.Printf("  Events total:     %d\n", m.EventCount)
		if len(m.StatusChanges) > 0 {
			fmt.Println("  Status changes:")
			for status, n := range m.StatusChanges {
				fmt.Printf("    %-16s %d\n", status, n)
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("type", "", "only events of this type, e.g. task.created")
	eventsCmd.Flags().Duration("since", 0, "only events in this window, e.g. 24h")
	metricsCmd.Flags().Duration("since", 7*24*time.Hour, "aggregation window")

	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(metricsCmd)
}
