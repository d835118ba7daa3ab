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
	"os"

	"github.com/cloud-exit/givebox/internal/checkout"
	"github.com/cloud-exit/givebox/internal/config"
	"github.com/cloud-exit/givebox/internal/ui"
	"github.com/cloud-exit/givebox/internal/wizard"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Open the interactive checkout",
	Long:  "Walk through amount, details and payment in a full screen checkout.",
	Args:  cobra.NoArgs,
	RunE:  runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
	// Non-interactive terminal: the TUI cannot run
	if !ui.IsTerminal(os.Stdin) {
		ui.Warn("Non-interactive terminal detected. Use 'givebox donate' to donate from scripts.")
		return nil
	}

	// First run: leave a config behind for the operator to edit
	if p, _ := cmd.Flags().GetString("config"); p == "" && !config.ConfigExists() {
		if err := config.WriteDefaults(); err != nil {
			ui.Warnf("Could not write default config: %v", err)
		} else {
			ui.Infof("No configuration found. Defaults written to %s", config.ConfigFile())
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := wizard.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	recorder, closeRecorder := openRecorder(cfg)
	defer closeRecorder()
	opts.Views = append(opts.Views, recorder)

	result, err := wizard.Run(opts, cfg.Settings.AltScreen)
	if err != nil {
		return err
	}

	if len(result.Receipts) == 0 {
		ui.Info("No donation made.")
		return nil
	}
	for _, r := range result.Receipts {
		ui.Successf("Receipt %s: %s %s", r.ID,
			checkout.FormatCurrency(r.Amount, cfg.Campaign.Currency), r.Frequency.Label())
	}
	return nil
}
