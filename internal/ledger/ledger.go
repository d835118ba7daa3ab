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

// Package ledger keeps a local record of completed donations in BadgerDB.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cloud-exit/givebox/internal/checkout"
)

// ErrNotFound is returned when no receipt has the requested ID.
var ErrNotFound = errors.New("receipt not found")

const (
	receiptPrefix = "receipt:"
	idPrefix      = "id:"
)

// Options configures a Ledger.
type Options struct {
	Dir      string // on-disk directory (ignored when InMemory is true)
	InMemory bool   // use in-memory storage (for tests)
	ReadOnly bool   // open in read-only mode (no directory lock acquired)
}

// Entry is one stored donation.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Currency    string    `json:"currency" yaml:"currency"`
	Frequency   string    `json:"frequency" yaml:"frequency"`
	Email       string    `json:"email" yaml:"email"`
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// Summary totals the ledger.
type Summary struct {
	Count   int
	Monthly int                // recurring donations among Count
	Totals  map[string]float64 // currency -> sum
}

// Ledger wraps a Badger database of receipts.
type Ledger struct {
	db       *badger.DB
	readOnly bool
}

// Open creates or opens a ledger. If the WAL is corrupted (e.g. from an
// unclean shutdown), it recovers by opening in write mode first to allow
// truncation, then re-opening in the requested mode.
func Open(opts Options) (*Ledger, error) {
	bopts := badgerOptions(opts)

	db, err := badger.Open(bopts)
	if err != nil && !opts.InMemory && needsTruncation(err) {
		rdb, rerr := badger.Open(badgerOptions(Options{Dir: opts.Dir}))
		if rerr != nil {
			return nil, err
		}
		if cerr := rdb.Close(); cerr != nil {
			return nil, cerr
		}
		db, err = badger.Open(bopts)
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return &Ledger{db: db, readOnly: opts.ReadOnly || opts.InMemory}, nil
}

func badgerOptions(opts Options) badger.Options {
	if opts.InMemory {
		bopts := badger.DefaultOptions("").WithInMemory(true)
		bopts.Logger = nil
		return bopts
	}
	bopts := badger.DefaultOptions(opts.Dir)
	bopts.Logger = nil
	if opts.ReadOnly {
		bopts = bopts.WithReadOnly(true).WithBypassLockGuard(true)
	}
	return bopts
}

func needsTruncation(err error) bool {
	return strings.Contains(err.Error(), "Log truncate required") ||
		strings.Contains(err.Error(), "MANIFEST has unsupported version")
}

// receiptKey sorts receipts by processing time.
func receiptKey(e Entry) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", receiptPrefix, e.ProcessedAt.UnixNano(), e.ID))
}

// Record stores a receipt charged in currency. A receipt without a
// processing time is stamped with the current time.
func (l *Ledger) Record(r checkout.Receipt, currency string) error {
	if r.ID == "" {
		return errors.New("receipt has no ID")
	}
	at := r.ProcessedAt
	if at.IsZero() {
		at = time.Now()
	}
	e := Entry{
		ID:          r.ID,
		Amount:      r.Amount,
		Currency:    currency,
		Frequency:   string(r.Frequency),
		Email:       r.Email,
		ProcessedAt: at.UTC(),
	}
	val, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := receiptKey(e)
	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, val); err != nil {
			return err
		}
		return txn.Set([]byte(idPrefix+e.ID), key)
	})
}

// Get returns the receipt with the given ID.
func (l *Ledger) Get(id string) (Entry, error) {
	var e Entry
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(idPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	return e, err
}

// List returns up to limit receipts, newest first. A limit of 0 or less
// returns everything.
func (l *Ledger) List(limit int) ([]Entry, error) {
	var all []Entry
	err := l.iterate(func(e Entry) error {
		all = append(all, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Summarize totals every stored receipt.
func (l *Ledger) Summarize() (Summary, error) {
	s := Summary{Totals: make(map[string]float64)}
	err := l.iterate(func(e Entry) error {
		s.Count++
		if e.Frequency == string(checkout.FrequencyMonthly) {
			s.Monthly++
		}
		s.Totals[e.Currency] += e.Amount
		return nil
	})
	return s, err
}

// iterate calls fn for every receipt in processing order.
// Iteration stops early if fn returns a non-nil error.
func (l *Ledger) iterate(fn func(Entry) error) error {
	return l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(receiptPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return err
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close runs value log GC and then closes the underlying database.
func (l *Ledger) Close() error {
	if !l.readOnly {
		l.runGC()
	}
	return l.db.Close()
}

// runGC runs value log garbage collection until nothing more can be
// reclaimed. A vlog file is rewritten when at least half of it is garbage.
func (l *Ledger) runGC() {
	for {
		if l.db.RunValueLogGC(0.5) != nil {
			return
		}
	}
}

// Recorder is a checkout.View that writes every submitted donation to the
// ledger. Write failures go to OnError when set.
type Recorder struct {
	checkout.NopView
	Ledger   *Ledger
	Currency string
	OnError  func(error)
}

func (r Recorder) OnSubmitted(receipt checkout.Receipt) {
	if err := r.Ledger.Record(receipt, r.Currency); err != nil && r.OnError != nil {
		r.OnError(err)
	}
}
