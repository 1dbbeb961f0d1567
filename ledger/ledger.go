package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrInsufficientBalance is returned by Debit when the compensation amount
// exceeds the party's balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger tracks per-party withdrawable proceeds under a pull-payment model:
// settlements credit a balance, and the recipient drains it with an explicit
// withdrawal. Balances accumulate across settlements and are never negative.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{balances: make(map[string]decimal.Decimal)}
}

// Credit adds amount to the party's balance, creating the entry on first use.
// Non-positive amounts are ignored.
func (l *Ledger) Credit(party string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[party] = l.balances[party].Add(amount)
}

// Debit removes amount from the party's balance. It exists only to compensate
// a credit whose settlement later failed; it fails rather than drive a
// balance negative.
func (l *Ledger) Debit(party string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[party]
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, debit %s", ErrInsufficientBalance, party, balance, amount)
	}
	l.balances[party] = balance.Sub(amount)
	return nil
}

// Balance returns the party's current withdrawable balance.
func (l *Ledger) Balance(party string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[party]
}

// Withdraw drains the party's full balance and returns the amount drained.
// An empty balance is benign: it returns zero, never an error.
func (l *Ledger) Withdraw(party string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount := l.balances[party]
	delete(l.balances, party)
	return amount
}

// Balances returns a copy of all non-zero balances, keyed by party.
func (l *Ledger) Balances() map[string]decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]decimal.Decimal, len(l.balances))
	for party, balance := range l.balances {
		out[party] = balance
	}
	return out
}

// Load replaces the ledger contents with the supplied balances, dropping any
// non-positive entries. Used when restoring a snapshot.
func (l *Ledger) Load(balances map[string]decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = make(map[string]decimal.Decimal, len(balances))
	for party, balance := range balances {
		if balance.IsPositive() {
			l.balances[party] = balance
		}
	}
}
