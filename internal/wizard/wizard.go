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

package wizard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloud-exit/givebox/internal/checkout"
	"github.com/cloud-exit/givebox/internal/config"
)

// Result holds what happened during an interactive session.
type Result struct {
	Receipts []checkout.Receipt
}

// OptionsFromConfig builds screen options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	freq, err := checkout.ParseFrequency(cfg.Donation.DefaultFrequency)
	if err != nil {
		return Options{}, fmt.Errorf("donation.default_frequency: %w", err)
	}
	return Options{
		Campaign:            cfg.Campaign.Name,
		Tagline:             cfg.Campaign.Tagline,
		Currency:            cfg.Campaign.Currency,
		PresetAmounts:       cfg.Donation.PresetAmounts,
		Frequency:           freq,
		NotificationTimeout: cfg.Settings.NotificationTimeout,
		Processor:           checkout.SimulatedProcessor{Delay: cfg.Donation.ProcessingDelay},
	}, nil
}

// Run executes the checkout TUI until the donor quits.
func Run(opts Options, altScreen bool) (*Result, error) {
	var progOpts []tea.ProgramOption
	if altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(NewModel(opts), progOpts...)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("checkout error: %w", err)
	}

	wm := finalModel.(Model)
	// Covers exits that did not go through quit, e.g. a killed program.
	_ = wm.Machine().Close()
	return &Result{Receipts: wm.Receipts()}, nil
}
