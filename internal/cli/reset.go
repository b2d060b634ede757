package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every task",
	Long: `Delete every task and remove the stored collection. Requires --yes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		if !resetYes {
			return fmt.Errorf("refusing to delete %d task(s) without --yes", len(store.Tasks()))
		}
		n := len(store.Tasks())
		store.Clear(cmdContext(cmd))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d task(s)\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm deleting all tasks")
	rootCmd.AddCommand(resetCmd)
}
