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
	"time"

	"github.com/google/uuid"
)

// DefaultProcessingDelay is how long the simulated processor takes.
const DefaultProcessingDelay = 3 * time.Second

// Donation is what gets handed to a Processor once validation passed.
type Donation struct {
	Amount    float64
	Frequency Frequency
	Email     string
	Name      string
}

// Receipt is the result of a successful donation.
type Receipt struct {
	ID          string
	Amount      float64
	Frequency   Frequency
	Email       string
	ProcessedAt time.Time
}

// Processor charges a donation.
type Processor interface {
	Process(ctx context.Context, d Donation) (Receipt, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, d Donation) (Receipt, error)

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, d Donation) (Receipt, error) {
	return f(ctx, d)
}

// SimulatedProcessor pretends to charge a card by waiting Delay.
// Nothing leaves the process.
type SimulatedProcessor struct {
	Delay time.Duration
	Now   func() time.Time // defaults to time.Now
}

// Process waits for the configured delay or until ctx is done.
func (p SimulatedProcessor) Process(ctx context.Context, d Donation) (Receipt, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return Receipt{
		ID:          uuid.NewString(),
		Amount:      d.Amount,
		Frequency:   d.Frequency,
		Email:       d.Email,
		ProcessedAt: now(),
	}, nil
}
