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

package config

import "time"

// DefaultPresetAmounts are the amount buttons shown on the first step.
var DefaultPresetAmounts = []float64{10, 25, 50, 100, 250, 500}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Campaign: CampaignConfig{
			Name:     "Liberty Van",
			Tagline:  "Every donation keeps the van on the road.",
			Currency: "USD",
		},
		Donation: DonationConfig{
			PresetAmounts:    append([]float64(nil), DefaultPresetAmounts...),
			DefaultFrequency: "once",
			ProcessingDelay:  3 * time.Second,
		},
		Settings: SettingsConfig{
			AltScreen:           true,
			NotificationTimeout: 4 * time.Second,
		},
	}
}

// applyDefaults fills fields left empty in a config file.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = def.Version
	}
	if cfg.Campaign.Name == "" {
		cfg.Campaign.Name = def.Campaign.Name
	}
	if cfg.Campaign.Currency == "" {
		cfg.Campaign.Currency = def.Campaign.Currency
	}
	if len(cfg.Donation.PresetAmounts) == 0 {
		cfg.Donation.PresetAmounts = def.Donation.PresetAmounts
	}
	if cfg.Donation.DefaultFrequency == "" {
		cfg.Donation.DefaultFrequency = def.Donation.DefaultFrequency
	}
	if cfg.Settings.NotificationTimeout == 0 {
		cfg.Settings.NotificationTimeout = def.Settings.NotificationTimeout
	}
}
