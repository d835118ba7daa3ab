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

// Package checkout implements the donation checkout wizard: the three-step
// state machine, form validation, and simulated payment processing.
package checkout

import (
	"fmt"
	"strings"
)

// Step identifies one stage of the checkout wizard.
type Step int

const (
	StepAmount Step = iota
	StepDetails
	StepPayment
)

// Steps lists every step in wizard order.
var Steps = []Step{StepAmount, StepDetails, StepPayment}

var stepNames = map[Step]string{
	StepAmount:  "amount",
	StepDetails: "details",
	StepPayment: "payment",
}

var stepLabels = map[Step]string{
	StepAmount:  "Amount",
	StepDetails: "Details",
	StepPayment: "Payment",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Label returns the human readable tab label.
func (s Step) Label() string {
	return stepLabels[s]
}

// Valid reports whether s is one of the known steps.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// Next returns the step after s. The last step returns itself.
func (s Step) Next() Step {
	if s >= StepPayment {
		return StepPayment
	}
	return s + 1
}

// ParseStep converts a step name (case-insensitive) into a Step.
func ParseStep(name string) (Step, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range stepNames {
		if sn == n {
			return s, nil
		}
	}
	return StepAmount, fmt.Errorf("unknown step %q (valid: amount, details, payment)", name)
}

// Frequency is how often a donation recurs.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyMonthly Frequency = "monthly"
)

// Label returns the display text shown next to the amount.
func (f Frequency) Label() string {
	if f == FrequencyMonthly {
		return "Monthly"
	}
	return "One-time"
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyOnce || f == FrequencyMonthly
}

// ParseFrequency converts a frequency name into a Frequency.
// "one-time" is accepted as an alias for once.
func ParseFrequency(name string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "once", "one-time", "onetime":
		return FrequencyOnce, nil
	case "monthly":
		return FrequencyMonthly, nil
	}
	return FrequencyOnce, fmt.Errorf("unknown frequency %q (valid: once, monthly)", name)
}
