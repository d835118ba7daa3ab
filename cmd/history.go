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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/cloud-exit/givebox/internal/checkout"
	"github.com/cloud-exit/givebox/internal/config"
	"github.com/cloud-exit/givebox/internal/ledger"
	"github.com/cloud-exit/givebox/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyCmd = &cobra.Command{
	Use:   "history [receipt-id]",
	Short: "List donations made on this machine",
	Long: `List donations made on this machine.

Receipts are only kept when settings.keep_history is true in config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("output")
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unknown output format %q (want text or yaml)", format)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	dir := config.LedgerDir()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		ui.Info("No donations recorded yet.")
		if !cfg.Settings.KeepHistory {
			ui.Info("Set settings.keep_history: true in config.yaml to keep receipts.")
		}
		return nil
	}
	l, err := ledger.Open(ledger.Options{Dir: dir, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("receipt history: %w", err)
	}
	defer l.Close()

	if len(args) == 1 {
		e, err := l.Get(args[0])
		if err != nil {
			return fmt.Errorf("receipt %s: %w", args[0], err)
		}
		return printEntries(cmd.OutOrStdout(), []ledger.Entry{e}, format)
	}
	entries, err := l.List(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.Info("No donations recorded yet.")
		return nil
	}
	if err := printEntries(cmd.OutOrStdout(), entries, format); err != nil {
		return err
	}
	if format == "text" {
		sum, err := l.Summarize()
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), sum, cfg.Campaign.Name)
	}
	return nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Show at most this many donations (0 for all)")
	historyCmd.Flags().StringP("output", "o", "text", "Output format: text or yaml")
	rootCmd.AddCommand(historyCmd)
}

// openRecorder returns a view that stores receipts in the ledger, and a
// func to close it. With history off, or without a usable ledger, it returns
// a no-op view.
func openRecorder(cfg *config.Config) (checkout.View, func()) {
	if !cfg.Settings.KeepHistory {
		return checkout.NopView{}, func() {}
	}
	if err := config.EnsureDirs(); err != nil {
		ui.Debugf("Receipt history disabled: %v", err)
		return checkout.NopView{}, func() {}
	}
	l, err := ledger.Open(ledger.Options{Dir: config.LedgerDir()})
	if err != nil {
		ui.Warnf("Receipt history unavailable: %v", err)
		return checkout.NopView{}, func() {}
	}
	rec := ledger.Recorder{
		Ledger:   l,
		Currency: cfg.Campaign.Currency,
		OnError: func(err error) {
			ui.Warnf("Could not record receipt: %v", err)
		},
	}
	return rec, func() {
		if err := l.Close(); err != nil {
			ui.Debugf("Closing ledger: %v", err)
		}
	}
}

func printEntries(w io.Writer, entries []ledger.Entry, format string) error {
	if format == "yaml" {
		data, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	for _, e := range entries {
		freq := checkout.Frequency(e.Frequency).Label()
		fmt.Fprintf(w, "  %s  %-12s %-9s %s  %s\n",
			e.ProcessedAt.Local().Format("2006-01-02 15:04"),
			checkout.FormatCurrency(e.Amount, e.Currency), freq, e.Email, e.ID)
	}
	return nil
}

func printSummary(w io.Writer, s ledger.Summary, campaign string) {
	currencies := make([]string, 0, len(s.Totals))
	for c := range s.Totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %d donation(s) to %s, %d monthly\n", s.Count, campaign, s.Monthly)
	for _, c := range currencies {
		fmt.Fprintf(w, "  Total %s: %s\n", c, checkout.FormatCurrency(s.Totals[c], c))
	}
}
