package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/internal/observability"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var (
	statusJSON  bool
	statusSince string
)

// statusReport is the --json form of "tb status".
type statusReport struct {
	Total     int                           `json:"total"`
	Completed int                           `json:"completed"`
	Columns   map[models.TaskStatus]int     `json:"columns"`
	Deadlines map[models.DeadlineStatus]int `json:"deadlines"`
	Metrics   *observability.Metrics        `json:"metrics,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize tasks by column and deadline",
	Long: `Summarize the board: task counts per column, incomplete tasks that are
overdue, due today or due within two days, and activity recorded in the
event log over the --since window (e.g. 7d, 24h).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}

		now := nowFunc()
		tasks := store.Tasks()
		report := statusReport{
			Total:     len(tasks),
			Columns:   make(map[models.TaskStatus]int),
			Deadlines: core.DeadlineSummary(tasks, now),
		}
		for _, t := range tasks {
			report.Columns[t.Status]++
			if t.Completed {
				report.Completed++
			}
		}

		if MetricsCalc != nil {
			since, err := observability.ParseSince(statusSince, now)
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}
			report.Metrics, err = MetricsCalc.Calculate(since)
			if err != nil {
				return fmt.Errorf("calculating metrics: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		if statusJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting status as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		printStatusReport(out, report)
		return nil
	},
}

func printStatusReport(out io.Writer, r statusReport) {
	fmt.Fprintf(out, "Tasks: %d (%d completed)\n\n", r.Total, r.Completed)
	for _, s := range models.Statuses {
		fmt.Fprintf(out, "  %-24s %d\n", s.Label()+":", r.Columns[s])
	}

	fmt.Fprintln(out, "\nDeadlines (incomplete tasks)")
	fmt.Fprintf(out, "  %-24s %d\n", "Overdue:", r.Deadlines[models.DeadlineOverdue])
	fmt.Fprintf(out, "  %-24s %d\n", "Due today:", r.Deadlines[models.DeadlineToday])
	fmt.Fprintf(out, "  %-24s %d\n", "Due soon:", r.Deadlines[models.DeadlineApproaching])
	fmt.Fprintf(out, "  %-24s %d\n", "Upcoming:", r.Deadlines[models.DeadlineUpcoming])

	m := r.Metrics
	if m == nil {
		return
	}
	fmt.Fprintf(out, "\nActivity (last %s)\n", statusSince)
	fmt.Fprintf(out, "  %-24s %d\n", "Events recorded:", m.EventCount)
	fmt.Fprintf(out, "  %-24s %d\n", "Tasks created:", m.TasksCreated)
	fmt.Fprintf(out, "  %-24s %d\n", "Tasks updated:", m.TasksUpdated)
	fmt.Fprintf(out, "  %-24s %d\n", "Tasks completed:", m.TasksCompleted)
	fmt.Fprintf(out, "  %-24s %d\n", "Tasks reopened:", m.TasksReopened)
	fmt.Fprintf(out, "  %-24s %d\n", "Tasks deleted:", m.TasksDeleted)

	if len(m.MovesByStatus) > 0 {
		fmt.Fprintln(out, "\n  Moves into:")
		keys := make([]string, 0, len(m.MovesByStatus))
		for k := range m.MovesByStatus {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "    %-22s %d\n", models.TaskStatus(k).Label()+":", m.MovesByStatus[k])
		}
	}
	if m.NewestEvent != nil {
		fmt.Fprintf(out, "\n  %-24s %s\n", "Last activity:", m.NewestEvent.Local().Format(time.RFC3339))
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the summary as JSON")
	statusCmd.Flags().StringVar(&statusSince, "since", "7d", "Activity window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(statusCmd)
}
