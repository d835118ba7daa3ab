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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAmount is returned when no positive amount has been chosen.
	ErrInvalidAmount = errors.New("no amount selected")
	// ErrSubmissionInFlight is returned when a donation is already being processed.
	ErrSubmissionInFlight = errors.New("donation submission already in progress")
	// ErrSubmissionCancelled is returned when a pending submission was abandoned by Reset.
	ErrSubmissionCancelled = errors.New("donation submission cancelled")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("checkout closed")
)

// FieldError describes one failing form field.
type FieldError struct {
	Field  Field
	Reason string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError is returned when a step or submission fails validation.
// Fields are ordered so that the first entry is the field to focus.
type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s step invalid: %s", e.Step, strings.Join(parts, ", "))
}

// Unwrap exposes ErrInvalidAmount when the amount is one of the failures.
func (e *ValidationError) Unwrap() error {
	if e.Has(FieldAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field Field) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Focus returns the field the donor should be sent to first.
func (e *ValidationError) Focus() Field {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Field
}

// FieldNames returns the failing field identifiers in order.
func (e *ValidationError) FieldNames() []Field {
	out := make([]Field, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Field
	}
	return out
}

// NavigationDeniedError is returned when a step is requested before its
// prerequisites are complete.
type NavigationDeniedError struct {
	Step    Step
	Missing Step
}

func (e *NavigationDeniedError) Error() string {
	return fmt.Sprintf("cannot open %s step: %s step not complete", e.Step, e.Missing)
}
