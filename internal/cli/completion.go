package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how one shell's script is generated and where
// --install puts it, relative to the home directory.
type shellCompletion struct {
	generate   func(w io.Writer) error
	installDir []string
	fileName   string
	loadHint   string
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		generate:   func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		installDir: []string{".local", "share", "bash-completion", "completions"},
		fileName:   "tb",
		loadHint:   `eval "$(tb completion bash)"`,
	},
	"zsh": {
		generate:   func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		installDir: []string{".local", "share", "zsh", "site-functions"},
		fileName:   "_tb",
		loadHint:   `eval "$(tb completion zsh)"`,
	},
	"fish": {
		generate:   func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		installDir: []string{".config", "fish", "completions"},
		fileName:   "tb.fish",
		loadHint:   "tb completion fish | source",
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		loadHint: "tb completion powershell | Out-String | Invoke-Expression",
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print or install shell completions for tb",
	Long: `Print the tab-completion script for bash, zsh, fish or powershell, or
install it under your home directory with --install.

Task IDs, board columns and flag values all complete.

  tb completion zsh --install
  eval "$(tb completion bash)"`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false, "Write the script into your shell's completion directory")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	sc, ok := shellCompletions[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if !completionInstall {
		// The hint goes to stderr so the script can be piped.
		fmt.Fprintf(cmd.ErrOrStderr(), "# Load in the current session with:\n#   %s\n", sc.loadHint)
		return sc.generate(cmd.OutOrStdout())
	}

	if sc.installDir == nil {
		return fmt.Errorf("--install is not supported for %s; add the output of 'tb completion %s' to your profile", args[0], args[0])
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target, err := installCompletion(home, sc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s completions to %s\n", args[0], target)
	return nil
}

// installCompletion writes the script for sc below home and returns its path.
func installCompletion(home string, sc shellCompletion) (string, error) {
	dir := filepath.Join(append([]string{home}, sc.installDir...)...)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating completion directory: %w", err)
	}
	target := filepath.Join(dir, sc.fileName)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := sc.generate(f)
	closeErr := f.Close()
	if writeErr != nil {
		return "", fmt.Errorf("writing completion file %s: %w", target, writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return target, nil
}
