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

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level givebox configuration (config.yaml).
type Config struct {
	Version  int            `yaml:"version"`
	Campaign CampaignConfig `yaml:"campaign"`
	Donation DonationConfig `yaml:"donation"`
	Settings SettingsConfig `yaml:"settings"`
}

// CampaignConfig describes who the donations are for.
type CampaignConfig struct {
	Name     string `yaml:"name"`
	Tagline  string `yaml:"tagline,omitempty"`
	Currency string `yaml:"currency"` // ISO 4217 code, e.g. USD
}

// DonationConfig holds the choices offered on the amount step.
type DonationConfig struct {
	PresetAmounts    []float64     `yaml:"preset_amounts"`
	DefaultFrequency string        `yaml:"default_frequency"`
	ProcessingDelay  time.Duration `yaml:"processing_delay"`
}

// SettingsConfig holds terminal behaviour.
type SettingsConfig struct {
	AltScreen           bool          `yaml:"alt_screen"`
	NotificationTimeout time.Duration `yaml:"notification_timeout"`
	KeepHistory         bool          `yaml:"keep_history"` // store receipts in the local ledger
}

// Validate reports the first problem that would make the checkout unusable.
func (c *Config) Validate() error {
	if len(c.Donation.PresetAmounts) == 0 {
		return fmt.Errorf("donation.preset_amounts: at least one amount is required")
	}
	for _, a := range c.Donation.PresetAmounts {
		if a <= 0 {
			return fmt.Errorf("donation.preset_amounts: %v is not a positive amount", a)
		}
	}
	switch strings.ToLower(c.Donation.DefaultFrequency) {
	case "once", "monthly":
	default:
		return fmt.Errorf("donation.default_frequency: %q is not once or monthly", c.Donation.DefaultFrequency)
	}
	if c.Donation.ProcessingDelay < 0 {
		return fmt.Errorf("donation.processing_delay: must not be negative")
	}
	if len(c.Campaign.Currency) != 3 {
		return fmt.Errorf("campaign.currency: %q is not an ISO 4217 code", c.Campaign.Currency)
	}
	return nil
}
