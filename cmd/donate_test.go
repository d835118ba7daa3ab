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
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloud-exit/givebox/internal/checkout"
	"github.com/cloud-exit/givebox/internal/config"
	"github.com/cloud-exit/givebox/internal/ledger"
	"github.com/cloud-exit/givebox/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var validDonateArgs = []string{
	"--email", "ada@example.com",
	"--first-name", "Ada",
	"--last-name", "Lovelace",
	"--address", "1 Analytical Way",
	"--city", "London",
	"--state", "LDN",
	"--zip", "NW1",
	"--country", "UK",
	"--card-number", "4111 1111 1111 1111",
	"--expiry", "12/29",
	"--cvv", "123",
	"--card-name", "Ada Lovelace",
}

func parseArgs(t *testing.T, args ...string) (donateOptions, error) {
	t.Helper()
	fs := pflag.NewFlagSet("donate", pflag.ContinueOnError)
	addDonateFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return parseDonateFlags(fs)
}

// captureLog redirects ui output for the duration of the test.
func captureLog(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := ui.Stdout, ui.Stderr
	ui.Stdout, ui.Stderr = &out, &errOut
	t.Cleanup(func() { ui.Stdout, ui.Stderr = oldOut, oldErr })
	return &out, &errOut
}

// useTempHome points the config directory, and so the ledger, at a temp dir.
func useTempHome(t *testing.T) {
	t.Helper()
	old := config.Home
	config.Home = t.TempDir()
	t.Cleanup(func() { config.Home = old })
}

// testCommand returns a command whose --config points at a fresh config
// with a near instant processing delay.
func testCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	useTempHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Donation.ProcessingDelay = time.Millisecond
	cfg.Settings.KeepHistory = true
	if err := config.SaveConfigTo(cfg, path); err != nil {
		t.Fatalf("SaveConfigTo() error = %v", err)
	}

	cmd := &cobra.Command{Use: "donate"}
	cmd.Flags().String("config", path, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func TestParseDonateFlags_FormFields(t *testing.T) {
	opts, err := parseArgs(t, append([]string{"-a", "$1,000", "-f", "monthly"}, validDonateArgs...)...)
	if err != nil {
		t.Fatalf("parseDonateFlags() error = %v", err)
	}
	if opts.Amount != 1000 {
		t.Errorf("Amount = %v, want 1000", opts.Amount)
	}
	if opts.Frequency != "monthly" {
		t.Errorf("Frequency = %q, want monthly", opts.Frequency)
	}
	if opts.Form.ZipCode != "NW1" || opts.Form.CardName != "Ada Lovelace" || opts.Form.ExpiryDate != "12/29" {
		t.Errorf("Form = %+v", opts.Form)
	}
	if opts.Output != "text" {
		t.Errorf("Output = %q, want text", opts.Output)
	}
}

func TestParseDonateFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative amount", []string{"--amount", "-5"}},
		{"garbage amount", []string{"--amount", "lots"}},
		{"bad output", []string{"--output", "json"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseArgs(t, tc.args...); err == nil {
				t.Errorf("parseDonateFlags(%v) succeeded, want error", tc.args)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	opts, err := parseArgs(t, append([]string{"--amount", "25"}, validDonateArgs...)...)
	if err != nil {
		t.Fatal(err)
	}
	m := checkout.New(nil)
	defer m.Close()

	if err := advance(m, opts.Amount, opts.Form); err != nil {
		t.Fatalf("advance() error = %v", err)
	}
	if s := m.State(); s.ActiveStep != checkout.StepPayment || !s.Completion.Details {
		t.Errorf("state = %+v, want payment with details complete", s)
	}
}

func TestAdvance_NoAmount(t *testing.T) {
	m := checkout.New(nil)
	defer m.Close()
	if err := advance(m, 0, checkout.Form{}); !errors.Is(err, checkout.ErrInvalidAmount) {
		t.Errorf("advance() error = %v, want ErrInvalidAmount", err)
	}
}

func TestAdvance_BadEmail(t *testing.T) {
	opts, _ := parseArgs(t, append(validDonateArgs, "--email", "nope")...)
	m := checkout.New(nil)
	defer m.Close()

	err := advance(m, 10, opts.Form)
	var verr *checkout.ValidationError
	if !errors.As(err, &verr) || !verr.Has(checkout.FieldEmail) {
		t.Fatalf("advance() error = %v, want email validation error", err)
	}
	if m.State().ActiveStep != checkout.StepDetails {
		t.Errorf("ActiveStep = %v, want details", m.State().ActiveStep)
	}
}

func TestRunDonate_YAMLReceipt(t *testing.T) {
	logOut, _ := captureLog(t)
	cmd, out := testCommand(t)
	opts, err := parseArgs(t, append([]string{"-a", "25", "-f", "monthly", "-o", "yaml"}, validDonateArgs...)...)
	if err != nil {
		t.Fatal(err)
	}

	if err := runDonate(cmd, opts); err != nil {
		t.Fatalf("runDonate() error = %v", err)
	}

	var doc receiptDoc
	if err := yaml.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("receipt is not YAML: %v\n%s", err, out.String())
	}
	if doc.Amount != 25 || doc.Frequency != "monthly" || doc.Currency != "USD" || doc.Email != "ada@example.com" {
		t.Errorf("receipt = %+v", doc)
	}
	if doc.ID == "" {
		t.Fatal("receipt has no ID")
	}

	l, err := ledger.Open(ledger.Options{Dir: config.LedgerDir(), ReadOnly: true})
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer l.Close()
	if e, err := l.Get(doc.ID); err != nil || e.Amount != 25 {
		t.Errorf("ledger entry = %+v, %v", e, err)
	}
	if !strings.Contains(logOut.String(), "Thank you for your donation of") {
		t.Errorf("log = %q, want thank-you line", logOut.String())
	}
}

func TestRunDonate_TextReceipt(t *testing.T) {
	captureLog(t)
	cmd, out := testCommand(t)
	opts, _ := parseArgs(t, append([]string{"-a", "50"}, validDonateArgs...)...)

	if err := runDonate(cmd, opts); err != nil {
		t.Fatalf("runDonate() error = %v", err)
	}
	for _, want := range []string{"Receipt:", "50.00", "One-time", "ada@example.com"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunDonate_PaymentFailureReportsFields(t *testing.T) {
	_, logErr := captureLog(t)
	cmd, out := testCommand(t)
	opts, _ := parseArgs(t, append(validDonateArgs[:16:16], "--amount", "10")...)

	err := runDonate(cmd, opts)
	var verr *checkout.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("runDonate() error = %v, want ValidationError", err)
	}
	for _, f := range checkout.PaymentFields {
		if !verr.Has(f) {
			t.Errorf("missing failure for %s", f)
		}
		if !strings.Contains(logErr.String(), f.Label()+": required") {
			t.Errorf("log missing %q line:\n%s", f.Label(), logErr.String())
		}
	}
	if out.Len() != 0 {
		t.Errorf("receipt printed on failure: %q", out.String())
	}
}

func TestRunDonate_Timeout(t *testing.T) {
	captureLog(t)
	useTempHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Donation.ProcessingDelay = time.Hour
	if err := config.SaveConfigTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	cmd := &cobra.Command{Use: "donate"}
	cmd.Flags().String("config", path, "")

	opts, _ := parseArgs(t, append([]string{"-a", "10", "--timeout", "10ms"}, validDonateArgs...)...)
	if err := runDonate(cmd, opts); err == nil || !strings.Contains(err.Error(), "deadline exceeded") {
		t.Errorf("runDonate() error = %v, want deadline exceeded", err)
	}
}

func TestLogViewDebugOnlyWhenVerbose(t *testing.T) {
	out, errOut := captureLog(t)
	old := ui.Verbose
	t.Cleanup(func() { ui.Verbose = old })

	ui.Verbose = false
	logView{}.OnStepChanged(checkout.StepDetails)
	if errOut.Len() != 0 {
		t.Errorf("debug output without --verbose: %q", errOut.String())
	}

	logView{}.OnNavigationDenied(checkout.StepPayment, checkout.StepAmount)
	if !strings.Contains(errOut.String(), "[WARN] Cannot open Payment yet, complete Amount first") {
		t.Errorf("stderr = %q", errOut.String())
	}

	logView{}.OnStepCompleted(checkout.StepAmount)
	if !strings.Contains(out.String(), "[OK] Amount step complete") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRunDonate_VerboseRedactsCard(t *testing.T) {
	_, logErr := captureLog(t)
	old := ui.Verbose
	ui.Verbose = true
	t.Cleanup(func() { ui.Verbose = old })

	cmd, _ := testCommand(t)
	opts, _ := parseArgs(t, append([]string{"-a", "10"}, validDonateArgs...)...)
	if err := runDonate(cmd, opts); err != nil {
		t.Fatalf("runDonate() error = %v", err)
	}

	log := logErr.String()
	if !strings.Contains(log, "[DEBUG] Donor form:") {
		t.Fatalf("no debug line in %q", log)
	}
	for _, secret := range []string{"4111 1111 1111 1111", "4111111111111111", "CVV:123"} {
		if strings.Contains(log, secret) {
			t.Errorf("log leaks %q:\n%s", secret, log)
		}
	}
	if !strings.Contains(log, "**** 1111") {
		t.Errorf("log missing masked card:\n%s", log)
	}
}

func TestRunDonate_AmountMatchingCVVIsNotMasked(t *testing.T) {
	logOut, logErr := captureLog(t)
	old := ui.Verbose
	ui.Verbose = true
	t.Cleanup(func() { ui.Verbose = old })

	cmd, _ := testCommand(t)
	opts, _ := parseArgs(t, append([]string{"-a", "123"}, validDonateArgs...)...)
	if err := runDonate(cmd, opts); err != nil {
		t.Fatalf("runDonate() error = %v", err)
	}

	log := logOut.String() + logErr.String()
	want := "Thank you for your donation of " + checkout.FormatCurrency(123, "USD") + "!"
	if !strings.Contains(log, want) || !strings.Contains(log, "123.00") {
		t.Errorf("amount corrupted in log:\n%s", log)
	}
	if !strings.Contains(log, "CVV:***") || strings.Contains(log, "**** ***") {
		t.Errorf("unexpected masking in log:\n%s", log)
	}
}
