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

package checkout

// Completion records which steps have passed validation at least once.
type Completion struct {
	Amount  bool
	Details bool
	Payment bool
}

// Done reports the completion flag for step.
func (c Completion) Done(step Step) bool {
	switch step {
	case StepAmount:
		return c.Amount
	case StepDetails:
		return c.Details
	case StepPayment:
		return c.Payment
	}
	return false
}

func (c *Completion) mark(step Step) {
	switch step {
	case StepAmount:
		c.Amount = true
	case StepDetails:
		c.Details = true
	case StepPayment:
		c.Payment = true
	}
}

// WizardState holds the donor's progress through the checkout.
type WizardState struct {
	SelectedAmount    float64 // 0 means no amount chosen
	SelectedFrequency Frequency
	Completion        Completion
	ActiveStep        Step
}

// InitialState returns the state of a fresh checkout.
func InitialState() WizardState {
	return WizardState{
		SelectedFrequency: FrequencyOnce,
		ActiveStep:        StepAmount,
	}
}

// MissingPrerequisite returns the first incomplete step that blocks access to
// step. blocked is false when step is reachable.
func (s WizardState) MissingPrerequisite(step Step) (missing Step, blocked bool) {
	for _, prev := range Steps {
		if prev >= step {
			break
		}
		if !s.Completion.Done(prev) {
			return prev, true
		}
	}
	return step, false
}

// Reachable reports whether navigation to step is currently permitted.
// Amount is always reachable.
func (s WizardState) Reachable(step Step) bool {
	if !step.Valid() {
		return false
	}
	_, blocked := s.MissingPrerequisite(step)
	return !blocked
}
