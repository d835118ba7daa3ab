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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloud-exit/givebox/internal/config"
	"github.com/cloud-exit/givebox/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set by ldflags at build time.
var Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:           "givebox",
	Short:         "Donation checkout wizard",
	Long:          "GiveBox – Take donations through a three step checkout right in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.Flags().GetBool("verbose")
		ui.Verbose = v
		if nc, _ := cmd.Flags().GetBool("no-color"); nc {
			ui.DisableColor()
		}
		return nil
	},
	RunE: runCheckout,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		if ui.IsTerminal(os.Stdout) {
			ui.LogoSmall()
			fmt.Println()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "givebox version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default $XDG_CONFIG_HOME/givebox/config.yaml)")

	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate("givebox version {{.Version}}\n")
	rootCmd.Version = Version
}

// loadConfig reads the file named by --config, or the default one.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	ui.Debugf("Campaign %q, currency %s", cfg.Campaign.Name, cfg.Campaign.Currency)
	return cfg, nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.ErrorNoExit(err.Error())
		os.Exit(1)
	}
}
