package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var doneCmd = &cobra.Command{
	Use:               "done <task-id>",
	Short:             "Mark a task completed",
	Long:              `Mark a task completed. The task keeps its board column; use "tb move" to change it.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCompleted(cmd, args[0], true)
	},
}

var undoneCmd = &cobra.Command{
	Use:               "undone <task-id>",
	Short:             "Mark a task not completed",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setCompleted(cmd, args[0], false)
	},
}

func setCompleted(cmd *cobra.Command, arg string, completed bool) error {
	store, err := requireStore()
	if err != nil {
		return err
	}
	task, err := resolveTask(store, arg)
	if err != nil {
		return err
	}
	store.CompleteTask(cmdContext(cmd), task.ID, completed)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(completed), task.Title)
	return nil
}

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <status>",
	Short: "Move a task to another board column",
	Long: `Move a task to the todo, inProgress or done column. Moving does not
change whether the task is completed.`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return completeTaskIDs(cmd, args, toComplete)
		}
		if len(args) == 1 {
			return completeStatuses(cmd, args, toComplete)
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		task, err := resolveTask(store, args[0])
		if err != nil {
			return err
		}
		status, err := models.ParseStatus(args[1])
		if err != nil {
			return err
		}
		if task.Status == status {
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is already in %s\n", shortID(task.ID), status.Label())
			return nil
		}
		store.MoveTask(cmdContext(cmd), task.ID, status)
		fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s: %s -> %s\n", shortID(task.ID), task.Status.Label(), status.Label())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:               "delete <task-id>",
	Aliases:           []string{"rm"},
	Short:             "Delete a task",
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
		store.DeleteTask(cmdContext(cmd), task.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s (%s)\n", shortID(task.ID), task.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(deleteCmd)
}
