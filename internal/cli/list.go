package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var (
	listFilterFlag string
	listSortFlag   string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks with their deadline state.

--filter selects all, active or completed tasks. --sort orders by deadline
(earliest first), createdAt (newest first) or title (alphabetical). Both
default to the views settings in .taskboard.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}

		filter := ViewConfig.DefaultFilter
		if listFilterFlag != "" {
			if filter, err = models.ParseFilter(listFilterFlag); err != nil {
				return err
			}
		}
		sortKey := ViewConfig.DefaultSort
		if listSortFlag != "" {
			if sortKey, err = models.ParseSortKey(listSortFlag); err != nil {
				return err
			}
		}

		tasks := core.SortTasks(core.FilterTasks(store.Tasks(), filter), sortKey, viewLocale())
		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		printTaskTable(out, tasks, nowFunc())
		return nil
	},
}

// printTaskTable prints one row per task. Completed tasks show no deadline
// state.
func printTaskTable(out io.Writer, tasks []models.Task, now time.Time) {
	fmt.Fprintf(out, "%-3s %-8s %-12s %-13s %-11s %s\n", "", "ID", "DEADLINE", "STATE", "STATUS", "TITLE")
	fmt.Fprintf(out, "%-3s %-8s %-12s %-13s %-11s %s\n", "", "--", "--------", "-----", "------", "-----")
	for _, t := range tasks {
		state := ""
		if !t.Completed {
			state = deadlineLabel(core.ClassifyDeadline(t.Deadline, now))
		}
		fmt.Fprintf(out, "%-3s %-8s %-12s %-13s %-11s %s\n",
			checkbox(t.Completed), shortID(t.ID), formatDate(t.Deadline), state, t.Status.Label(), t.Title)
	}
}

func deadlineLabel(ds models.DeadlineStatus) string {
	switch ds {
	case models.DeadlineOverdue:
		return "Overdue"
	case models.DeadlineToday:
		return "Due today"
	case models.DeadlineApproaching:
		return "Due soon"
	}
	return ""
}

var showCmd = &cobra.Command{
	Use:               "show <task-id>",
	Short:             "Show one task",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		task, err := resolveTask(store, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", checkbox(task.Completed), task.Title)
		fmt.Fprintf(out, "  ID:       %s\n", task.ID)
		fmt.Fprintf(out, "  Status:   %s\n", task.Status.Label())
		deadline := formatDate(task.Deadline)
		if !task.Completed {
			if label := deadlineLabel(core.ClassifyDeadline(task.Deadline, nowFunc())); label != "" {
				deadline += " (" + label + ")"
			}
		}
		fmt.Fprintf(out, "  Deadline: %s\n", deadline)
		fmt.Fprintf(out, "  Created:  %s\n", formatDateTime(task.CreatedAt))
		fmt.Fprintf(out, "  Updated:  %s\n", formatDateTime(task.UpdatedAt))
		if task.Description != "" {
			fmt.Fprintf(out, "\n%s\n", task.Description)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listFilterFlag, "filter", "f", "", "Filter: all, active, completed")
	listCmd.Flags().StringVar(&listSortFlag, "sort", "", "Sort by: deadline, createdAt, title")
	_ = listCmd.RegisterFlagCompletionFunc("filter", cobraFixedCompletion("all", "active", "completed"))
	_ = listCmd.RegisterFlagCompletionFunc("sort", cobraFixedCompletion("deadline", "createdAt", "title"))
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
