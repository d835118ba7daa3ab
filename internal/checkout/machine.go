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

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

// ErrSubmitRequired is returned when the payment step is completed through
// AttemptCompleteStep instead of SubmitDonation.
var ErrSubmitRequired = errors.New("payment step is completed by submitting the donation")

// Machine drives a single checkout. It is safe for use from several
// goroutines, but every transition is applied atomically: a rejected
// operation leaves the state exactly as it was.
type Machine struct {
	mu        sync.Mutex
	state     WizardState
	view      View
	processor Processor

	// cancel is non-nil while a submission is in flight.
	cancel context.CancelFunc
	// gen changes on Reset and Close so a late submission result is dropped.
	gen    uint64
	closed bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithProcessor replaces the default simulated processor.
func WithProcessor(p Processor) Option {
	return func(m *Machine) {
		if p != nil {
			m.processor = p
		}
	}
}

// WithFrequency sets the initial frequency.
func WithFrequency(f Frequency) Option {
	return func(m *Machine) {
		if f.Valid() {
			m.state.SelectedFrequency = f
		}
	}
}

// New creates a machine that reports to view. A nil view is replaced by NopView.
func New(view View, opts ...Option) *Machine {
	if view == nil {
		view = NopView{}
	}
	m := &Machine{
		state:     InitialState(),
		view:      view,
		processor: SimulatedProcessor{Delay: DefaultProcessingDelay},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() WizardState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CanAccess reports whether step can currently be opened through RequestStep.
func (m *Machine) CanAccess(step Step) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Reachable(step)
}

// Submitting reports whether a donation is being processed.
func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// SelectAmount records the amount typed or clicked by the donor. Zero clears
// the selection. Negative and non-finite values are rejected.
func (m *Machine) SelectAmount(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return ErrInvalidAmount
	}
	m.state.SelectedAmount = v
	return nil
}

// SelectFrequency records whether the donation is one-time or monthly.
func (m *Machine) SelectFrequency(f Frequency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if !f.Valid() {
		return fmt.Errorf("unknown frequency %q", f)
	}
	m.state.SelectedFrequency = f
	return nil
}

// AttemptCompleteStep validates step and, on success, marks it complete and
// advances to the following step, which is returned.
func (m *Machine) AttemptCompleteStep(step Step, form Form) (Step, error) {
	m.mu.Lock()
	next, events, err := m.completeLocked(step, form)
	m.mu.Unlock()

	m.dispatch(events)
	return next, err
}

func (m *Machine) completeLocked(step Step, form Form) (Step, []notification, error) {
	if m.closed {
		return m.state.ActiveStep, nil, ErrClosed
	}

	var failures []FieldError
	switch step {
	case StepAmount:
		if !(m.state.SelectedAmount > 0) {
			failures = []FieldError{{Field: FieldAmount, Reason: ErrInvalidAmount.Error()}}
		}
	case StepDetails:
		if missing, blocked := m.state.MissingPrerequisite(step); blocked {
			return m.state.ActiveStep,
				[]notification{navigationDenied(step, missing)},
				&NavigationDeniedError{Step: step, Missing: missing}
		}
		failures = ValidateDetails(form)
	case StepPayment:
		return m.state.ActiveStep, nil, ErrSubmitRequired
	default:
		return m.state.ActiveStep, nil, fmt.Errorf("unknown step %v", step)
	}

	if len(failures) > 0 {
		return m.state.ActiveStep,
			[]notification{validationFailed(step, failures)},
			&ValidationError{Step: step, Fields: failures}
	}

	m.state.Completion.mark(step)
	events := []notification{stepCompleted(step)}
	next := step.Next()
	if m.state.ActiveStep != next {
		m.state.ActiveStep = next
		events = append(events, stepChanged(next))
	}
	return next, events, nil
}

// RequestStep opens step if all earlier steps are complete. Completion flags
// are never changed.
func (m *Machine) RequestStep(step Step) error {
	m.mu.Lock()
	events, err := m.requestLocked(step)
	m.mu.Unlock()

	m.dispatch(events)
	return err
}

func (m *Machine) requestLocked(step Step) ([]notification, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if !step.Valid() {
		return nil, fmt.Errorf("unknown step %v", step)
	}
	if missing, blocked := m.state.MissingPrerequisite(step); blocked {
		return []notification{navigationDenied(step, missing)},
			&NavigationDeniedError{Step: step, Missing: missing}
	}
	if m.state.ActiveStep == step {
		return nil, nil
	}
	m.state.ActiveStep = step
	return []notification{stepChanged(step)}, nil
}

// SubmitDonation validates every field, then blocks while the processor
// handles the donation. Only one submission may be in flight; others fail
// with ErrSubmissionInFlight. On success the checkout is reset and the
// receipt returned. Cancelling ctx, or calling Reset or Close, abandons the
// submission without touching the state.
func (m *Machine) SubmitDonation(ctx context.Context, form Form) (Receipt, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Receipt{}, ErrClosed
	}
	if m.cancel != nil {
		m.mu.Unlock()
		return Receipt{}, ErrSubmissionInFlight
	}
	if failures := ValidateSubmission(m.state.SelectedAmount, form); len(failures) > 0 {
		m.mu.Unlock()
		m.dispatch([]notification{validationFailed(StepPayment, failures)})
		return Receipt{}, &ValidationError{Step: StepPayment, Fields: failures}
	}

	donation := Donation{
		Amount:    m.state.SelectedAmount,
		Frequency: m.state.SelectedFrequency,
		Email:     strings.TrimSpace(form.Email),
		Name:      strings.TrimSpace(form.FirstName + " " + form.LastName),
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	gen := m.gen
	m.mu.Unlock()

	receipt, err := m.processor.Process(ctx, donation)

	m.mu.Lock()
	cancel()
	if m.gen != gen {
		// Reset or Close already cleared m.cancel.
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return Receipt{}, ErrClosed
		}
		return Receipt{}, ErrSubmissionCancelled
	}
	m.cancel = nil
	if err != nil {
		m.mu.Unlock()
		return Receipt{}, fmt.Errorf("processing donation: %w", err)
	}

	events := []notification{stepCompleted(StepPayment), submitted(receipt)}
	events = append(events, m.resetLocked()...)
	m.mu.Unlock()

	m.dispatch(events)
	return receipt, nil
}

// Reset abandons any pending submission and restores the initial state.
func (m *Machine) Reset() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.abortLocked()
	events := m.resetLocked()
	m.mu.Unlock()

	m.dispatch(events)
	return nil
}

func (m *Machine) resetLocked() []notification {
	prev := m.state.ActiveStep
	m.state = InitialState()
	if prev != StepAmount {
		return []notification{stepChanged(StepAmount)}
	}
	return nil
}

func (m *Machine) abortLocked() {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Close tears the machine down. A pending submission is cancelled and the
// view receives no further notifications. Close is idempotent.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.abortLocked()
	m.closed = true
	m.view = nil
	return nil
}

// dispatch delivers events outside the lock. It stops as soon as the machine
// is closed.
func (m *Machine) dispatch(events []notification) {
	for _, ev := range events {
		m.mu.Lock()
		v := m.view
		m.mu.Unlock()
		if v == nil {
			return
		}
		ev(v)
	}
}
