package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for tally",
	Long: `Set up shell tab-completions for tally commands, flags and arguments.
Task IDs, column keys and filter values are completed from the workspace.

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script under your home directory):

  tally completion bash --install
  tally completion zsh --install
  tally completion fish --install

Or print the completion script to stdout:

  tally completion bash
  tally completion powershell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions under your home directory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell := args[0]

	if completionInstall {
		return installCompletion(cmd.OutOrStdout(), shell)
	}

	// Hints go to stderr so eval "$(tally completion bash)" stays clean.
	switch shell {
	case "bash":
		printHints(cmd, `# Load in the current session: eval "$(tally completion bash)"`)
		return rootCmd.GenBashCompletionV2(cmd.OutOrStdout(), true)
	case "zsh":
		printHints(cmd, `# Load in the current session: eval "$(tally completion zsh)"`)
		return rootCmd.GenZshCompletion(cmd.OutOrStdout())
	case "fish":
		printHints(cmd, "# Load in the current session: tally completion fish | source")
		return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
	case "powershell":
		printHints(cmd, "# Load in the current session: tally completion powershell | Out-String | Invoke-Expression")
		return rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	default:
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", shell)
	}
}

func printHints(cmd *cobra.Command, lines ...string) {
	w := cmd.ErrOrStderr()
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

// completionTarget returns where --install writes the script for shell.
func completionTarget(home, shell string) (string, error) {
	switch shell {
	case "bash":
		return filepath.Join(home, ".local", "share", "bash-completion", "completions", "tally"), nil
	case "zsh":
		return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_tally"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "completions", "tally.fish"), nil
	case "powershell":
		return "", fmt.Errorf("automatic install is not supported for PowerShell; run 'tally completion powershell' and add the output to your profile")
	default:
		return "", fmt.Errorf("unsupported shell %q", shell)
	}
}

func installCompletion(out io.Writer, shell string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target, err := completionTarget(home, shell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	err = writeCompletionFile(target, func(w io.Writer) error {
		switch shell {
		case "bash":
			return rootCmd.GenBashCompletionV2(w, true)
		case "zsh":
			return rootCmd.GenZshCompletion(w)
		default:
			return rootCmd.GenFishCompletion(w, true)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s completions installed to %s\n", shell, target)
	if shell == "zsh" {
		fmt.Fprintf(out, "Ensure %s is in your fpath.\n", filepath.Dir(target))
	}
	return nil
}

// writeCompletionFile creates target and lets gen write the script into it,
// reporting a close error only when the write succeeded.
func writeCompletionFile(target string, gen func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := gen(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
