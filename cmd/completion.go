// GiveBox - Donation Checkout Wizard
// Copyright (C) 2026 Cloud Exit B.V.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloud-exit/givebox/internal/ui"
	"github.com/spf13/cobra"
)

var supportedShells = []string{"bash", "zsh", "fish"}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell autocompletion",
	Long: `Generate autocompletion for your shell.

If no shell is specified, the current shell is detected automatically.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: supportedShells,
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}
		if err := writeCompletion(cmd.OutOrStdout(), shell); err != nil {
			return err
		}
		if ui.IsTerminal(os.Stdout) {
			for _, line := range completionHints(shell) {
				fmt.Fprintln(os.Stderr, line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// detectShell returns the name of the user's current shell.
func detectShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		if base := filepath.Base(sh); isSupportedShell(base) {
			return base
		}
	}

	// Parent process name via /proc on Linux
	if data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", os.Getppid())); err == nil {
		if name := strings.TrimSpace(string(data)); isSupportedShell(name) {
			return name
		}
	}
	return "bash"
}

func isSupportedShell(name string) bool {
	for _, s := range supportedShells {
		if s == name {
			return true
		}
	}
	return false
}

func writeCompletion(w io.Writer, shell string) error {
	var err error
	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		err = rootCmd.GenZshCompletion(w)
	case "fish":
		err = rootCmd.GenFishCompletion(w, true)
	default:
		return fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(supportedShells, ", "))
	}
	if err != nil {
		return fmt.Errorf("generating %s completion: %w", shell, err)
	}
	return nil
}

// completionHints are printed to stderr only when stdout is a terminal,
// so they never end up in an eval or a redirected file.
func completionHints(shell string) []string {
	switch shell {
	case "bash":
		return []string{
			"",
			"# To enable autocompletion, add this to your ~/.bashrc:",
			"#",
			"#   eval \"$(givebox completion bash)\"",
		}
	case "zsh":
		return []string{
			"",
			"# To enable autocompletion, add this to your ~/.zshrc:",
			"#",
			"#   eval \"$(givebox completion zsh)\"",
		}
	case "fish":
		return []string{
			"",
			"# To enable autocompletion, run:",
			"#",
			"#   givebox completion fish > ~/.config/fish/completions/givebox.fish",
		}
	}
	return nil
}
