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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gateProcessor blocks until released. If honorCtx is false it ignores
// cancellation, like a processor that cannot be interrupted.
type gateProcessor struct {
	started  chan struct{}
	release  chan struct{}
	honorCtx bool
}

func newGateProcessor(honorCtx bool) *gateProcessor {
	return &gateProcessor{
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
		honorCtx: honorCtx,
	}
}

func (p *gateProcessor) Process(ctx context.Context, d Donation) (Receipt, error) {
	p.started <- struct{}{}
	if p.honorCtx {
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-p.release:
		}
	} else {
		<-p.release
	}
	return Receipt{ID: "r-1", Amount: d.Amount, Frequency: d.Frequency}, nil
}

type submitResult struct {
	receipt Receipt
	err     error
}

// startSubmit runs SubmitDonation in the background and waits until the
// processor has been entered.
func startSubmit(t *testing.T, ctx context.Context, m *Machine, p *gateProcessor) <-chan submitResult {
	t.Helper()
	done := make(chan submitResult, 1)
	go func() {
		r, err := m.SubmitDonation(ctx, filledForm())
		done <- submitResult{r, err}
	}()
	select {
	case <-p.started:
	case <-time.After(2 * time.Second):
		t.Fatal("processor was never called")
	}
	return done
}

func waitResult(t *testing.T, done <-chan submitResult) submitResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not finish")
	}
	return submitResult{}
}

func readyMachine(t *testing.T, view View, p Processor) *Machine {
	t.Helper()
	m := New(view, WithProcessor(p))
	require.NoError(t, m.SelectAmount(25))
	_, err := m.AttemptCompleteStep(StepAmount, Form{})
	require.NoError(t, err)
	_, err = m.AttemptCompleteStep(StepDetails, filledDetails())
	require.NoError(t, err)
	return m
}

func TestSubmitDonation_InFlightGuard(t *testing.T) {
	p := newGateProcessor(true)
	m := readyMachine(t, nil, p)

	done := startSubmit(t, context.Background(), m, p)
	assert.True(t, m.Submitting())

	_, err := m.SubmitDonation(context.Background(), filledForm())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(p.release)
	res := waitResult(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, float64(25), res.receipt.Amount)
	assert.False(t, m.Submitting())
	assert.Equal(t, InitialState(), m.State())
}

func TestSubmitDonation_ContextCancelled(t *testing.T) {
	p := newGateProcessor(true)
	view := &recordingView{}
	m := readyMachine(t, view, p)
	before := m.State()

	ctx, cancel := context.WithCancel(context.Background())
	done := startSubmit(t, ctx, m, p)
	cancel()

	res := waitResult(t, done)
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.Equal(t, before, m.State())
	assert.False(t, m.Submitting())
	assert.Empty(t, view.receipts)

	// The guard is released, so a new submission goes through.
	close(p.release)
	_, err := m.SubmitDonation(context.Background(), filledForm())
	require.NoError(t, err)
}

func TestSubmitDonation_ResetCancelsPending(t *testing.T) {
	p := newGateProcessor(false)
	view := &recordingView{}
	m := readyMachine(t, view, p)

	done := startSubmit(t, context.Background(), m, p)
	require.NoError(t, m.Reset())
	assert.False(t, m.Submitting())

	// Select a new amount while the old result is still outstanding.
	require.NoError(t, m.SelectAmount(99))
	close(p.release)

	res := waitResult(t, done)
	assert.ErrorIs(t, res.err, ErrSubmissionCancelled)
	assert.Equal(t, float64(99), m.State().SelectedAmount)
	assert.Empty(t, view.receipts)
}

func TestSubmitDonation_CloseDuringPending(t *testing.T) {
	p := newGateProcessor(false)
	view := &recordingView{}
	m := readyMachine(t, view, p)
	before := m.State()
	eventsBefore := view.Events()

	done := startSubmit(t, context.Background(), m, p)
	require.NoError(t, m.Close())
	close(p.release)

	res := waitResult(t, done)
	assert.ErrorIs(t, res.err, ErrClosed)
	assert.Equal(t, before, m.State())
	assert.Equal(t, eventsBefore, view.Events())
}

func TestSubmitDonation_ProcessorError(t *testing.T) {
	boom := errors.New("card declined")
	m := readyMachine(t, nil, ProcessorFunc(func(context.Context, Donation) (Receipt, error) {
		return Receipt{}, boom
	}))
	before := m.State()

	_, err := m.SubmitDonation(context.Background(), filledForm())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, m.State())
	assert.False(t, m.Submitting())
}

func TestClose_RejectsFurtherOperations(t *testing.T) {
	view := &recordingView{}
	m := New(view)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.SelectAmount(5), ErrClosed)
	assert.ErrorIs(t, m.SelectFrequency(FrequencyMonthly), ErrClosed)
	assert.ErrorIs(t, m.RequestStep(StepDetails), ErrClosed)
	assert.ErrorIs(t, m.Reset(), ErrClosed)
	_, err := m.AttemptCompleteStep(StepAmount, Form{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.SubmitDonation(context.Background(), filledForm())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, view.Events())
}

func TestSimulatedProcessor_Delay(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := SimulatedProcessor{Delay: 20 * time.Millisecond, Now: func() time.Time { return fixed }}

	start := time.Now()
	r, err := p.Process(context.Background(), Donation{Amount: 10, Frequency: FrequencyOnce, Email: "x@y.io"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, fixed, r.ProcessedAt)
	assert.Equal(t, "x@y.io", r.Email)
	assert.Len(t, r.ID, 36)
}

func TestSimulatedProcessor_Cancelled(t *testing.T) {
	p := SimulatedProcessor{Delay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Process(ctx, Donation{Amount: 10})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
