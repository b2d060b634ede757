package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var (
	editTitleFlag       string
	editDescriptionFlag string
	editDeadlineFlag    string
)

var editCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Change a task's title, description or deadline",
	Long: `Change the title, description or deadline of a task. Only the flags
given are applied; pass --description "" to clear the description.`,
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

		var update models.TaskUpdate
		flags := cmd.Flags()
		if flags.Changed("title") {
			title := strings.TrimSpace(editTitleFlag)
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}
			update.Title = &title
		}
		if flags.Changed("description") {
			desc := editDescriptionFlag
			update.Description = &desc
		}
		if flags.Changed("deadline") {
			deadline, err := core.ParseDeadline(editDeadlineFlag, nowFunc())
			if err != nil {
				return err
			}
			update.Deadline = &deadline
		}
		if update.Title == nil && update.Description == nil && update.Deadline == nil {
			return fmt.Errorf("nothing to change: use --title, --description or --deadline")
		}

		store.UpdateTask(cmdContext(cmd), task.ID, update)
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", shortID(task.ID))
		return nil
	},
}

func init() {
	editCmd.Flags().StringVarP(&editTitleFlag, "title", "t", "", "New title")
	editCmd.Flags().StringVar(&editDescriptionFlag, "description", "", "New description")
	editCmd.Flags().StringVarP(&editDeadlineFlag, "deadline", "d", "", "New deadline (YYYY-MM-DD, RFC 3339, today, tomorrow)")
	rootCmd.AddCommand(editCmd)
}
