package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var (
	addDeadlineFlag    string
	addDescriptionFlag string
	addStatusFlag      string
	addCompletedFlag   bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Add a task with a title and a deadline.

The deadline is required and accepts YYYY-MM-DD (due at the end of that
day), an RFC 3339 timestamp, "today" or "tomorrow". New tasks start in the
To Do column unless --status says otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}

		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}
		deadline, err := core.ParseDeadline(addDeadlineFlag, nowFunc())
		if err != nil {
			return err
		}
		status := models.StatusTodo
		if addStatusFlag != "" {
			if status, err = models.ParseStatus(addStatusFlag); err != nil {
				return err
			}
		}

		task := store.AddTask(cmdContext(cmd), models.TaskDraft{
			Title:       title,
			Description: addDescriptionFlag,
			Deadline:    deadline,
			Completed:   addCompletedFlag,
			Status:      status,
		})

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added task %s\n", shortID(task.ID))
		fmt.Fprintf(out, "  Title:    %s\n", task.Title)
		fmt.Fprintf(out, "  Deadline: %s\n", formatDate(task.Deadline))
		fmt.Fprintf(out, "  Status:   %s\n", task.Status.Label())
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDeadlineFlag, "deadline", "d", "", "Deadline (YYYY-MM-DD, RFC 3339, today, tomorrow)")
	addCmd.Flags().StringVar(&addDescriptionFlag, "description", "", "Optional description")
	addCmd.Flags().StringVarP(&addStatusFlag, "status", "s", "", "Initial column: todo, inProgress, done")
	addCmd.Flags().BoolVar(&addCompletedFlag, "completed", false, "Create the task already completed")
	_ = addCmd.MarkFlagRequired("deadline")
	_ = addCmd.RegisterFlagCompletionFunc("status", completeStatuses)
	rootCmd.AddCommand(addCmd)
}
