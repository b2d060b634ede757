package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeTaskIDs lists task IDs with their titles as descriptions.
func completeTaskIDs(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Store == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, task := range Store.Tasks() {
		if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
			ids = append(ids, task.ID+"\t"+task.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeStatuses lists the board columns.
func completeStatuses(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"todo\tTo Do",
		"inProgress\tIn Progress",
		"done\tDone",
	}, cobra.ShellCompDirectiveNoFileComp
}

// cobraFixedCompletion completes from a fixed list of values.
func cobraFixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
