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
	"strings"
	"testing"
)

func TestFormatCardNumber(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"4111":                "4111",
		"41111":               "4111 1",
		"4111111111111111":    "4111 1111 1111 1111",
		"4111-1111 1111x1111": "4111 1111 1111 1111",
	}
	for in, want := range tests {
		if got := FormatCardNumber(in); got != want {
			t.Errorf("FormatCardNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatExpiry(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"1":      "1",
		"12":     "12/",
		"1229":   "12/29",
		"12/29":  "12/29",
		"122930": "12/29",
	}
	for in, want := range tests {
		if got := FormatExpiry(in); got != want {
			t.Errorf("FormatExpiry(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	got := FormatCurrency(25, "USD")
	if !strings.Contains(got, "$") || !strings.Contains(got, "25.00") {
		t.Errorf("FormatCurrency(25, USD) = %q", got)
	}
	if fallback := FormatCurrency(25, "???"); fallback != got {
		t.Errorf("FormatCurrency(25, ???) = %q, want USD fallback %q", fallback, got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"25", 25, false},
		{"$100", 100, false},
		{"1,000", 1000, false},
		{"12.50", 12.5, false},
		{"-5", 0, true},
		{"abc", 0, true},
		{"NaN", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
