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
	"io"
	"os"
	"time"

	"github.com/cloud-exit/givebox/internal/checkout"
	"github.com/cloud-exit/givebox/internal/redact"
	"github.com/cloud-exit/givebox/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// formFlags maps each form field to its command line flag.
var formFlags = []struct {
	field checkout.Field
	flag  string
}{
	{checkout.FieldEmail, "email"},
	{checkout.FieldFirstName, "first-name"},
	{checkout.FieldLastName, "last-name"},
	{checkout.FieldAddress, "address"},
	{checkout.FieldCity, "city"},
	{checkout.FieldState, "state"},
	{checkout.FieldZipCode, "zip"},
	{checkout.FieldCountry, "country"},
	{checkout.FieldCardNumber, "card-number"},
	{checkout.FieldExpiryDate, "expiry"},
	{checkout.FieldCVV, "cvv"},
	{checkout.FieldCardName, "card-name"},
}

type donateOptions struct {
	Amount    float64
	Frequency string // empty means the configured default
	Form      checkout.Form
	Timeout   time.Duration
	Output    string
}

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Make a donation without the interactive screen",
	Long: `Run the checkout from flags. Every step is validated exactly as in the
interactive checkout and failures are reported per field.`,
	Example: `  givebox donate --amount 25 --frequency monthly \
    --email ada@example.com --first-name Ada --last-name Lovelace \
    --address "1 Analytical Way" --city London --state LDN --zip NW1 --country UK \
    --card-number "4111 1111 1111 1111" --expiry 12/29 --cvv 123 --card-name "Ada Lovelace"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseDonateFlags(cmd.Flags())
		if err != nil {
			return err
		}
		return runDonate(cmd, opts)
	},
}

func init() {
	addDonateFlags(donateCmd.Flags())
	_ = donateCmd.RegisterFlagCompletionFunc("frequency", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(checkout.FrequencyOnce), string(checkout.FrequencyMonthly)}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(donateCmd)
}

func addDonateFlags(f *pflag.FlagSet) {
	f.StringP("amount", "a", "", "Donation amount, e.g. 25 or $1,000")
	f.StringP("frequency", "f", "", "once or monthly (default from config)")
	for _, ff := range formFlags {
		f.String(ff.flag, "", ff.field.Label())
	}
	f.Duration("timeout", 0, "Give up if processing takes longer than this (0 waits forever)")
	f.StringP("output", "o", "text", "Receipt format: text or yaml")
}

func parseDonateFlags(flags *pflag.FlagSet) (donateOptions, error) {
	var opts donateOptions

	raw, _ := flags.GetString("amount")
	amount, err := checkout.ParseAmount(raw)
	if err != nil {
		return opts, err
	}
	opts.Amount = amount
	opts.Frequency, _ = flags.GetString("frequency")
	for _, ff := range formFlags {
		v, _ := flags.GetString(ff.flag)
		opts.Form.Set(ff.field, v)
	}
	opts.Timeout, _ = flags.GetDuration("timeout")
	opts.Output, _ = flags.GetString("output")
	if opts.Output != "text" && opts.Output != "yaml" {
		return opts, fmt.Errorf("unknown output format %q (want text or yaml)", opts.Output)
	}
	return opts, nil
}

func runDonate(cmd *cobra.Command, opts donateOptions) error {
	// Card data never reaches the terminal, not even with --verbose
	red := redact.ForForm(opts.Form)
	stdout, stderr := ui.Stdout, ui.Stderr
	ui.Stdout, ui.Stderr = red.Writer(stdout), red.Writer(stderr)
	defer func() { ui.Stdout, ui.Stderr = stdout, stderr }()
	ui.Debugf("Donor form: %+v", redact.MaskForm(opts.Form))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	freqName := opts.Frequency
	if freqName == "" {
		freqName = cfg.Donation.DefaultFrequency
	}
	freq, err := checkout.ParseFrequency(freqName)
	if err != nil {
		return err
	}

	if opts.Output == "text" && ui.IsTerminal(os.Stdout) {
		ui.Logo(cfg.Campaign.Name, cfg.Campaign.Tagline)
		fmt.Fprintln(ui.Stdout)
	}

	recorder, closeRecorder := openRecorder(cfg)
	defer closeRecorder()

	m := checkout.New(checkout.MultiView{logView{currency: cfg.Campaign.Currency}, recorder},
		checkout.WithProcessor(checkout.SimulatedProcessor{Delay: cfg.Donation.ProcessingDelay}),
		checkout.WithFrequency(freq),
	)
	defer m.Close()

	if err := advance(m, opts.Amount, opts.Form); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var sp *ui.Spinner
	if ui.IsTerminal(os.Stdout) {
		sp = ui.NewSpinner(fmt.Sprintf("Processing %s donation...",
			checkout.FormatCurrency(opts.Amount, cfg.Campaign.Currency)))
		sp.Start()
	}
	receipt, err := m.SubmitDonation(ctx, opts.Form)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return fmt.Errorf("donation not completed: %w", err)
	}

	return printReceipt(cmd.OutOrStdout(), receipt, cfg.Campaign.Currency, opts.Output)
}

// advance walks the machine through the amount and details steps so the
// payment step is active.
func advance(m *checkout.Machine, amount float64, form checkout.Form) error {
	if err := m.SelectAmount(amount); err != nil {
		return err
	}
	if _, err := m.AttemptCompleteStep(checkout.StepAmount, form); err != nil {
		return err
	}
	if _, err := m.AttemptCompleteStep(checkout.StepDetails, form); err != nil {
		return err
	}
	return nil
}

type receiptDoc struct {
	ID          string    `yaml:"id"`
	Amount      float64   `yaml:"amount"`
	Currency    string    `yaml:"currency"`
	Frequency   string    `yaml:"frequency"`
	Email       string    `yaml:"email"`
	ProcessedAt time.Time `yaml:"processed_at"`
}

func printReceipt(w io.Writer, r checkout.Receipt, currency, format string) error {
	if format == "yaml" {
		data, err := yaml.Marshal(receiptDoc{
			ID:          r.ID,
			Amount:      r.Amount,
			Currency:    currency,
			Frequency:   string(r.Frequency),
			Email:       r.Email,
			ProcessedAt: r.ProcessedAt,
		})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-12s %s\n", "Receipt:", r.ID)
	fmt.Fprintf(w, "  %-12s %s\n", "Amount:", checkout.FormatCurrency(r.Amount, currency))
	fmt.Fprintf(w, "  %-12s %s\n", "Frequency:", r.Frequency.Label())
	fmt.Fprintf(w, "  %-12s %s\n", "Email:", r.Email)
	fmt.Fprintf(w, "  %-12s %s\n", "Processed:", r.ProcessedAt.Format(time.RFC1123))
	return nil
}

// logView reports machine notifications as tagged log lines.
type logView struct {
	currency string
}

func (v logView) OnStepChanged(step checkout.Step) {
	ui.Debugf("Active step: %s", step.Label())
}

func (v logView) OnStepCompleted(step checkout.Step) {
	ui.Successf("%s step complete", step.Label())
}

func (v logView) OnValidationFailed(step checkout.Step, failures []checkout.FieldError) {
	for _, f := range failures {
		ui.ErrorNoExitf("%s: %s", f.Field.Label(), f.Reason)
	}
}

func (v logView) OnNavigationDenied(step, missing checkout.Step) {
	ui.Warnf("Cannot open %s yet, complete %s first", step.Label(), missing.Label())
}

func (v logView) OnSubmitted(r checkout.Receipt) {
	ui.Successf("Thank you for your donation of %s!", checkout.FormatCurrency(r.Amount, v.currency))
}
