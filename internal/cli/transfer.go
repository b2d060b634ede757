package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

var (
	exportFormatFlag string
	importFormatFlag string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all tasks as JSON or YAML",
	Long: `Write the task collection in the stored record format. Without a file
argument the collection is written to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		format, err := transferFormat(exportFormatFlag, args)
		if err != nil {
			return err
		}

		tasks := store.Tasks()
		data, err := storage.EncodeTasks(tasks, format)
		if err != nil {
			return fmt.Errorf("exporting tasks: %w", err)
		}
		if len(args) == 0 {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", len(tasks), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add tasks from a JSON or YAML export",
	Long: `Add every task in an exported file as a new task. Imported tasks receive
fresh IDs, so importing the same file twice creates duplicates. Records
without a parseable deadline or title are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		format, err := transferFormat(importFormatFlag, args)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		tasks, skipped, err := storage.DecodeTasks(data, format)
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		for _, rec := range skipped {
			fmt.Fprintf(out, "Skipped %s\n", rec.Error())
		}
		ctx := cmdContext(cmd)
		added := 0
		for _, t := range tasks {
			if strings.TrimSpace(t.Title) == "" {
				fmt.Fprintf(out, "Skipped record (id %q): empty title\n", t.ID)
				continue
			}
			store.AddTask(ctx, models.TaskDraft{
				Title:       t.Title,
				Description: t.Description,
				Deadline:    t.Deadline,
				Completed:   t.Completed,
				Status:      t.Status,
			})
			added++
		}
		fmt.Fprintf(out, "Imported %d task(s)\n", added)
		return nil
	},
}

// transferFormat picks the --format value, else the file extension, else
// JSON.
func transferFormat(flag string, args []string) (storage.Format, error) {
	if flag != "" {
		return storage.ParseFormat(flag)
	}
	if len(args) > 0 {
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".yaml", ".yml":
			return storage.FormatYAML, nil
		}
	}
	return storage.FormatJSON, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "", "Output format: json, yaml (default from file extension, else json)")
	importCmd.Flags().StringVar(&importFormatFlag, "format", "", "Input format: json, yaml (default from file extension, else json)")
	_ = exportCmd.RegisterFlagCompletionFunc("format", cobraFixedCompletion("json", "yaml"))
	_ = importCmd.RegisterFlagCompletionFunc("format", cobraFixedCompletion("json", "yaml"))
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
