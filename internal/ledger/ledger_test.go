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

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloud-exit/givebox/internal/checkout"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return l
}

func receipt(id string, amount float64, freq checkout.Frequency, at time.Time) checkout.Receipt {
	return checkout.Receipt{ID: id, Amount: amount, Frequency: freq, Email: id + "@example.com", ProcessedAt: at}
}

func TestRecordAndGet(t *testing.T) {
	l := openTestLedger(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := l.Record(receipt("r1", 25, checkout.FrequencyOnce, at), "USD"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := l.Get("r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Amount != 25 || got.Currency != "USD" || got.Frequency != "once" || !got.ProcessedAt.Equal(at) {
		t.Errorf("Get = %+v", got)
	}
}

func TestGetNotFound(t *testing.T) {
	l := openTestLedger(t)

	_, err := l.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRecordRequiresID(t *testing.T) {
	l := openTestLedger(t)
	if err := l.Record(checkout.Receipt{Amount: 5}, "USD"); err == nil {
		t.Error("Record without ID should fail")
	}
}

func TestListNewestFirst(t *testing.T) {
	l := openTestLedger(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := l.Record(receipt(id, 10, checkout.FrequencyOnce, base.Add(time.Duration(i)*time.Hour)), "USD"); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	all, err := l.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("List(0) = %v, want c, b, a", ids(all))
	}

	two, err := l.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(two) != 2 || two[0].ID != "c" || two[1].ID != "b" {
		t.Errorf("List(2) = %v, want c, b", ids(two))
	}
}

func TestRecordStampsMissingTime(t *testing.T) {
	l := openTestLedger(t)
	older := time.Now().Add(-time.Hour)

	if err := l.Record(receipt("old", 10, checkout.FrequencyOnce, older), "USD"); err != nil {
		t.Fatalf("Record(old): %v", err)
	}
	before := time.Now()
	if err := l.Record(receipt("unstamped", 10, checkout.FrequencyOnce, time.Time{}), "USD"); err != nil {
		t.Fatalf("Record(unstamped): %v", err)
	}

	got, err := l.Get("unstamped")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ProcessedAt.Before(before) {
		t.Errorf("ProcessedAt = %v, want at or after %v", got.ProcessedAt, before)
	}

	all, err := l.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != "unstamped" {
		t.Errorf("List(0) = %v, want unstamped first", ids(all))
	}
}

func TestSummarize(t *testing.T) {
	l := openTestLedger(t)
	at := time.Now()

	for _, r := range []struct {
		rc  checkout.Receipt
		cur string
	}{
		{receipt("a", 10, checkout.FrequencyOnce, at), "USD"},
		{receipt("b", 25, checkout.FrequencyMonthly, at.Add(time.Second)), "USD"},
		{receipt("c", 5, checkout.FrequencyMonthly, at.Add(2*time.Second)), "EUR"},
	} {
		if err := l.Record(r.rc, r.cur); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	s, err := l.Summarize()
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Count != 3 || s.Monthly != 2 {
		t.Errorf("Count = %d, Monthly = %d, want 3, 2", s.Count, s.Monthly)
	}
	if s.Totals["USD"] != 35 || s.Totals["EUR"] != 5 {
		t.Errorf("Totals = %v", s.Totals)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Record(receipt("keep", 50, checkout.FrequencyOnce, time.Now()), "USD"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ro, err := Open(Options{Dir: dir, ReadOnly: true})
	if err != nil {
		t.Fatalf("Open(read-only): %v", err)
	}
	defer ro.Close()
	if _, err := ro.Get("keep"); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestRecorderRecordsSubmissions(t *testing.T) {
	l := openTestLedger(t)
	m := checkout.New(Recorder{Ledger: l, Currency: "USD"},
		checkout.WithProcessor(checkout.SimulatedProcessor{}))
	defer m.Close()

	if err := m.SelectAmount(42); err != nil {
		t.Fatal(err)
	}
	form := checkout.Form{
		Email: "a@b.com", FirstName: "A", LastName: "B", Address: "1 St", City: "C",
		State: "S", ZipCode: "1", Country: "X",
		CardNumber: "4111111111111111", ExpiryDate: "12/29", CVV: "123", CardName: "A B",
	}
	r, err := m.SubmitDonation(context.Background(), form)
	if err != nil {
		t.Fatalf("SubmitDonation: %v", err)
	}

	got, err := l.Get(r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Amount != 42 || got.Email != "a@b.com" {
		t.Errorf("stored = %+v", got)
	}
}

func TestRecorderReportsErrors(t *testing.T) {
	l := openTestLedger(t)
	var reported error
	rec := Recorder{Ledger: l, Currency: "USD", OnError: func(err error) { reported = err }}
	rec.OnSubmitted(checkout.Receipt{})
	if reported == nil {
		t.Error("OnError not called for an unrecordable receipt")
	}
}

func ids(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}
