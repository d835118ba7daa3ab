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
	"regexp"
	"strings"
)

// Field identifies a form input.
type Field string

const (
	FieldAmount     Field = "amount"
	FieldEmail      Field = "email"
	FieldFirstName  Field = "firstName"
	FieldLastName   Field = "lastName"
	FieldAddress    Field = "address"
	FieldCity       Field = "city"
	FieldState      Field = "state"
	FieldZipCode    Field = "zipCode"
	FieldCountry    Field = "country"
	FieldCardNumber Field = "cardNumber"
	FieldExpiryDate Field = "expiryDate"
	FieldCVV        Field = "cvv"
	FieldCardName   Field = "cardName"
)

// DetailFields are required to complete the details step.
var DetailFields = []Field{
	FieldEmail,
	FieldFirstName,
	FieldLastName,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldZipCode,
	FieldCountry,
}

// PaymentFields are required in addition to DetailFields to submit.
var PaymentFields = []Field{
	FieldCardNumber,
	FieldExpiryDate,
	FieldCVV,
	FieldCardName,
}

var fieldLabels = map[Field]string{
	FieldAmount:     "Amount",
	FieldEmail:      "Email",
	FieldFirstName:  "First name",
	FieldLastName:   "Last name",
	FieldAddress:    "Address",
	FieldCity:       "City",
	FieldState:      "State",
	FieldZipCode:    "ZIP code",
	FieldCountry:    "Country",
	FieldCardNumber: "Card number",
	FieldExpiryDate: "Expiry (MM/YY)",
	FieldCVV:        "CVV",
	FieldCardName:   "Name on card",
}

// Label returns the input label for f.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Form is a snapshot of the donor's text inputs.
type Form struct {
	Email      string
	FirstName  string
	LastName   string
	Address    string
	City       string
	State      string
	ZipCode    string
	Country    string
	CardNumber string
	ExpiryDate string
	CVV        string
	CardName   string
}

// Value returns the raw value of field.
func (f Form) Value(field Field) string {
	switch field {
	case FieldEmail:
		return f.Email
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldAddress:
		return f.Address
	case FieldCity:
		return f.City
	case FieldState:
		return f.State
	case FieldZipCode:
		return f.ZipCode
	case FieldCountry:
		return f.Country
	case FieldCardNumber:
		return f.CardNumber
	case FieldExpiryDate:
		return f.ExpiryDate
	case FieldCVV:
		return f.CVV
	case FieldCardName:
		return f.CardName
	}
	return ""
}

// Set assigns value to field. Unknown fields are ignored.
func (f *Form) Set(field Field, value string) {
	switch field {
	case FieldEmail:
		f.Email = value
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldAddress:
		f.Address = value
	case FieldCity:
		f.City = value
	case FieldState:
		f.State = value
	case FieldZipCode:
		f.ZipCode = value
	case FieldCountry:
		f.Country = value
	case FieldCardNumber:
		f.CardNumber = value
	case FieldExpiryDate:
		f.ExpiryDate = value
	case FieldCVV:
		f.CVV = value
	case FieldCardName:
		f.CardName = value
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// minCardDigits is the shortest accepted card number. Only the length is
// checked; there is no Luhn verification.
const minCardDigits = 13

// ValidCardNumber reports whether s has enough characters once spaces and
// dashes are removed.
func ValidCardNumber(s string) bool {
	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return r
	}, s)
	return len(stripped) >= minCardDigits
}

const reasonRequired = "required"

// ValidateDetails checks the details step fields. Empty fields are reported in
// form order, followed by an email format failure if the email is non-empty.
func ValidateDetails(f Form) []FieldError {
	var errs []FieldError
	for _, field := range DetailFields {
		if strings.TrimSpace(f.Value(field)) == "" {
			errs = append(errs, FieldError{Field: field, Reason: reasonRequired})
		}
	}
	if email := strings.TrimSpace(f.Email); email != "" && !ValidEmail(email) {
		errs = append(errs, FieldError{Field: FieldEmail, Reason: "invalid email address"})
	}
	return errs
}

// ValidatePayment checks the payment step fields.
func ValidatePayment(f Form) []FieldError {
	var errs []FieldError
	for _, field := range PaymentFields {
		if strings.TrimSpace(f.Value(field)) == "" {
			errs = append(errs, FieldError{Field: field, Reason: reasonRequired})
		}
	}
	if card := strings.TrimSpace(f.CardNumber); card != "" && !ValidCardNumber(card) {
		errs = append(errs, FieldError{Field: FieldCardNumber, Reason: "card number too short"})
	}
	return errs
}

// ValidateSubmission checks everything a donation needs across all steps.
func ValidateSubmission(amount float64, f Form) []FieldError {
	var errs []FieldError
	if !(amount > 0) {
		errs = append(errs, FieldError{Field: FieldAmount, Reason: ErrInvalidAmount.Error()})
	}
	errs = append(errs, ValidateDetails(f)...)
	errs = append(errs, ValidatePayment(f)...)
	return errs
}
