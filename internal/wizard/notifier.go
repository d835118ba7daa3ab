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
	"sync"

	"github.com/cloud-exit/givebox/internal/checkout"
)

type noticeKind int

const (
	noticeNone noticeKind = iota
	noticeInfo
	noticeSuccess
	noticeError
)

// notice is one machine notification translated for the screen.
type notice struct {
	kind    noticeKind
	text    string
	step    checkout.Step
	invalid []checkout.Field // failing fields, first one gets focus
	receipt *checkout.Receipt
}

// notifier implements checkout.View. The machine may call it from the
// submission goroutine, so notices are queued and drained by Update.
type notifier struct {
	campaign string
	currency string

	mu      sync.Mutex
	pending []notice
}

func newNotifier(campaign, currency string) *notifier {
	return &notifier{campaign: campaign, currency: currency}
}

func (n *notifier) push(nt notice) {
	n.mu.Lock()
	n.pending = append(n.pending, nt)
	n.mu.Unlock()
}

// drain returns and clears the queued notices.
func (n *notifier) drain() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

func (n *notifier) OnStepChanged(step checkout.Step) {
	n.push(notice{kind: noticeNone, step: step})
}

func (n *notifier) OnStepCompleted(step checkout.Step) {
	var text string
	switch step {
	case checkout.StepAmount:
		text = "Amount confirmed! Please fill in your details."
	case checkout.StepDetails:
		text = "Details saved! Please enter your payment information."
	}
	n.push(notice{kind: noticeSuccess, text: text, step: step})
}

func (n *notifier) OnValidationFailed(step checkout.Step, failures []checkout.FieldError) {
	var text string
	switch step {
	case checkout.StepAmount:
		text = "Please select an amount before continuing."
	case checkout.StepDetails:
		text = "Please fill in all required fields correctly."
	default:
		text = "Please fill in all required fields."
	}
	invalid := make([]checkout.Field, len(failures))
	for i, f := range failures {
		invalid[i] = f.Field
	}
	n.push(notice{kind: noticeError, text: text, step: step, invalid: invalid})
}

func (n *notifier) OnNavigationDenied(step, missing checkout.Step) {
	text := "Please complete the amount selection first."
	if missing == checkout.StepDetails {
		text = "Please complete your details first."
	}
	n.push(notice{kind: noticeError, text: text, step: step})
}

func (n *notifier) OnSubmitted(r checkout.Receipt) {
	text := fmt.Sprintf("Thank you for your donation of %s! Your contribution will help fund our %s operation.",
		checkout.FormatCurrency(r.Amount, n.currency), n.campaign)
	n.push(notice{kind: noticeSuccess, text: text, step: checkout.StepPayment, receipt: &r})
}
