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

// View receives notifications from a Machine. Calls are made after the
// machine has released its lock, so implementations may call back into it.
// They may arrive on any goroutine that drives the machine.
type View interface {
	OnStepChanged(step Step)
	OnStepCompleted(step Step)
	OnValidationFailed(step Step, failures []FieldError)
	OnNavigationDenied(step Step, missing Step)
	OnSubmitted(receipt Receipt)
}

// NopView ignores every notification.
type NopView struct{}

func (NopView) OnStepChanged(Step) {}
func (NopView) OnStepCompleted(Step) {}
func (NopView) OnValidationFailed(Step, []FieldError) {}
func (NopView) OnNavigationDenied(Step, Step) {}
func (NopView) OnSubmitted(Receipt) {}

// MultiView fans notifications out to several views in order.
type MultiView []View

func (mv MultiView) OnStepChanged(step Step) {
	for _, v := range mv {
		v.OnStepChanged(step)
	}
}

func (mv MultiView) OnStepCompleted(step Step) {
	for _, v := range mv {
		v.OnStepCompleted(step)
	}
}

func (mv MultiView) OnValidationFailed(step Step, failures []FieldError) {
	for _, v := range mv {
		v.OnValidationFailed(step, failures)
	}
}

func (mv MultiView) OnNavigationDenied(step Step, missing Step) {
	for _, v := range mv {
		v.OnNavigationDenied(step, missing)
	}
}

func (mv MultiView) OnSubmitted(receipt Receipt) {
	for _, v := range mv {
		v.OnSubmitted(receipt)
	}
}

// notification is a deferred View call.
type notification func(View)

func stepChanged(step Step) notification {
	return func(v View) { v.OnStepChanged(step) }
}

func stepCompleted(step Step) notification {
	return func(v View) { v.OnStepCompleted(step) }
}

func validationFailed(step Step, failures []FieldError) notification {
	cp := append([]FieldError(nil), failures...)
	return func(v View) { v.OnValidationFailed(step, cp) }
}

func navigationDenied(step, missing Step) notification {
	return func(v View) { v.OnNavigationDenied(step, missing) }
}

func submitted(r Receipt) notification {
	return func(v View) { v.OnSubmitted(r) }
}
