// Package ledger implements the per-(user, asset) balance primitives
// of spec §4.1: reserve, release, settle, deposit, withdraw, each
// atomic per key. The ledger is the in-memory source of truth the
// matching engine reads and mutates inside a per-instrument critical
// section; a Sink persists every mutation for durability.
package ledger

import (
	"sync"

	"github.com/abdoElHodaky/exchange-core/internal/errs"
)

// RUB is the reserved quote-currency asset. It is never a
// registerable instrument (spec §3).
const RUB = "RUB"

// Source identifies which partition a settle debits from.
type Source int

const (
	FromAvailable Source = iota
	FromReserved
)

type entry struct {
	available int64
	reserved  int64
}

// Sink durably records a balance mutation. Implementations must not
// block the critical section for long; the gorm-backed Sink in
// internal/db does a single upsert per call.
type Sink interface {
	Save(userID, ticker string, available, reserved int64)
}

type noopSink struct{}

func (noopSink) Save(string, string, int64, int64) {}

// Ledger is the balance store of spec §4.1.
type Ledger struct {
	mu   sync.Mutex
	rows map[string]*entry
	sink Sink
}

// New builds an empty ledger. Pass nil for sink to run purely
// in-memory (used by tests).
func New(sink Sink) *Ledger {
	if sink == nil {
		sink = noopSink{}
	}
	return &Ledger{rows: make(map[string]*entry), sink: sink}
}

func key(userID, ticker string) string { return userID + "\x00" + ticker }

func (l *Ledger) row(userID, ticker string) *entry {
	k := key(userID, ticker)
	e, ok := l.rows[k]
	if !ok {
		e = &entry{}
		l.rows[k] = e
	}
	return e
}

func (l *Ledger) save(userID, ticker string, e *entry) {
	l.sink.Save(userID, ticker, e.available, e.reserved)
}

// Get returns (available, reserved) for a key; an untouched key reads
// as (0, 0) per spec I-model "absence is equivalent to zero".
func (l *Ledger) Get(userID, ticker string) (available, reserved int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.row(userID, ticker)
	return e.available, e.reserved
}

// Deposit credits available funds. Δ must be > 0.
func (l *Ledger) Deposit(userID, ticker string, delta int64) error {
	if delta <= 0 {
		return errs.New(errs.Validation, "deposit amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.row(userID, ticker)
	e.available += delta
	l.save(userID, ticker, e)
	return nil
}

// Withdraw debits available funds, failing if insufficient.
func (l *Ledger) Withdraw(userID, ticker string, delta int64) error {
	if delta <= 0 {
		return errs.New(errs.Validation, "withdraw amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.row(userID, ticker)
	if e.available < delta {
		return errs.New(errs.InsufficientFunds, "insufficient available balance")
	}
	e.available -= delta
	l.save(userID, ticker, e)
	return nil
}

// Reserve moves Δ from available to reserved, failing if insufficient.
func (l *Ledger) Reserve(userID, ticker string, delta int64) error {
	if delta <= 0 {
		return errs.New(errs.Validation, "reserve amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.row(userID, ticker)
	if e.available < delta {
		return errs.New(errs.InsufficientFunds, "insufficient available balance to reserve")
	}
	e.available -= delta
	e.reserved += delta
	l.save(userID, ticker, e)
	return nil
}

// Release moves Δ from reserved back to available.
func (l *Ledger) Release(userID, ticker string, delta int64) error {
	if delta <= 0 {
		return errs.New(errs.Validation, "release amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.row(userID, ticker)
	if e.reserved < delta {
		return errs.New(errs.Internal, "release exceeds reserved balance")
	}
	e.reserved -= delta
	e.available += delta
	l.save(userID, ticker, e)
	return nil
}

// Settle decrements from's partition (available or reserved) by Δ and
// credits to's available by Δ. Used as the two paired halves of a
// trade settlement (spec §4.1, §4.5.2).
func (l *Ledger) Settle(fromUser, fromTicker string, from Source, toUser, toTicker string, delta int64) error {
	if delta <= 0 {
		return errs.New(errs.Validation, "settle amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fe := l.row(fromUser, fromTicker)
	switch from {
	case FromAvailable:
		if fe.available < delta {
			return errs.New(errs.InsufficientFunds, "insufficient available balance to settle")
		}
		fe.available -= delta
	case FromReserved:
		if fe.reserved < delta {
			return errs.New(errs.InsufficientFunds, "insufficient reserved balance to settle")
		}
		fe.reserved -= delta
	}
	l.save(fromUser, fromTicker, fe)

	te := l.row(toUser, toTicker)
	te.available += delta
	l.save(toUser, toTicker, te)
	return nil
}
