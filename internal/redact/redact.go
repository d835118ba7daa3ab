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

// Package redact masks payment details in anything written to the terminal.
package redact

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/cloud-exit/givebox/internal/checkout"
)

// Redactor replaces registered values with their masks.
type Redactor struct {
	mu      sync.RWMutex
	secrets map[string]string // value -> mask
}

// New creates an empty Redactor.
func New() *Redactor {
	return &Redactor{secrets: make(map[string]string)}
}

// ForForm registers the card number of f in the spellings a donor might use.
// Expiry and CVV are too short to match safely inside free text; use
// MaskForm before printing a Form instead.
func ForForm(f checkout.Form) *Redactor {
	r := New()
	if digits := strings.Map(keepDigit, f.CardNumber); digits != "" {
		mask := MaskCard(digits)
		r.Add(f.CardNumber, mask)
		r.Add(strings.TrimSpace(f.CardNumber), mask)
		r.Add(digits, mask)
		r.Add(checkout.FormatCardNumber(digits), mask)
	}
	return r
}

// MaskForm returns a copy of f with its payment fields masked.
func MaskForm(f checkout.Form) checkout.Form {
	if f.CardNumber != "" {
		f.CardNumber = MaskCard(f.CardNumber)
	}
	if f.ExpiryDate != "" {
		f.ExpiryDate = "**/**"
	}
	if f.CVV != "" {
		f.CVV = "***"
	}
	return f
}

// MaskCard keeps the last four digits of a card number.
func MaskCard(number string) string {
	digits := strings.Map(keepDigit, number)
	if len(digits) <= 4 {
		return "****"
	}
	return "**** " + digits[len(digits)-4:]
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// Add registers value to be replaced by mask. Empty values are ignored.
func (r *Redactor) Add(value, mask string) {
	if value == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.secrets[value] = mask
}

// Filter replaces every registered value in input. Longer values are
// replaced first so a formatted card number wins over its digits.
func (r *Redactor) Filter(input []byte) []byte {
	r.mu.RLock()
	values := make([]string, 0, len(r.secrets))
	for v := range r.secrets {
		values = append(values, v)
	}
	masks := make(map[string]string, len(r.secrets))
	for k, v := range r.secrets {
		masks[k] = v
	}
	r.mu.RUnlock()

	if len(values) == 0 {
		return input
	}
	sort.Slice(values, func(i, j int) bool { return len(values[i]) > len(values[j]) })

	output := input
	for _, v := range values {
		output = bytes.ReplaceAll(output, []byte(v), []byte(masks[v]))
	}
	return output
}

// String is Filter for strings.
func (r *Redactor) String(s string) string {
	return string(r.Filter([]byte(s)))
}

// Count returns the number of registered values.
func (r *Redactor) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.secrets)
}

// Writer returns a writer that filters everything written through it to w.
func (r *Redactor) Writer(w io.Writer) io.Writer {
	return &filterWriter{r: r, w: w}
}

type filterWriter struct {
	r *Redactor
	w io.Writer
}

func (fw *filterWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write(fw.r.Filter(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
