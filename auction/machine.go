package auction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akhoshrozeh/dutch-auction/core"
	"github.com/akhoshrozeh/dutch-auction/custody"
	"github.com/akhoshrozeh/dutch-auction/ledger"
)

var (
	// ErrNoActiveListing is returned when an operation needs a live listing
	// and the slot is empty (or was just swept).
	ErrNoActiveListing = errors.New("no active listing")

	// ErrUnderpayment is returned when a bid's payment is below the current price.
	ErrUnderpayment = errors.New("payment below current price")

	// ErrEscrowFailed is returned when the custodian rejects the escrow pull
	// during listing creation.
	ErrEscrowFailed = errors.New("custodian rejected the escrow transfer")

	// ErrCustodyMismatch is returned when settlement finds the escrowed item
	// no longer held by the auction.
	ErrCustodyMismatch = errors.New("auction no longer holds the escrowed item")
)

// Receipt records a settled bid. The refund is the bidder's overpayment and
// is returned synchronously with the bid; the clearing price is credited to
// the seller's proceeds balance and must be withdrawn separately.
type Receipt struct {
	ListingID      string
	ItemID         string
	Seller         string
	Bidder         string
	Price          decimal.Decimal
	Refund         decimal.Decimal
	SettlementHash string
}

// Machine orchestrates the single-slot dutch auction: listing creation,
// time-based pricing, bid settlement, lazy expiration, and pull-payment
// withdrawal of seller proceeds.
//
// Every operation re-runs the expiration sweep before trusting liveness, and
// machine-owned state (the slot, the proceeds ledger) is mutated before any
// custodian transfer is issued, so a call that re-enters through an external
// transfer observes a consistent, already-updated machine.
type Machine struct {
	mu       sync.Mutex
	clock    Clock
	log      *zap.Logger
	escrow   string
	registry *Registry
	proceeds *ledger.Ledger
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces the wall clock, e.g. with a manual clock in tests.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithEscrowAccount overrides the generated escrow account identity under
// which the machine holds items with custodians.
func WithEscrowAccount(id string) Option {
	return func(m *Machine) { m.escrow = id }
}

// New returns a machine with an empty slot and an empty proceeds ledger.
func New(opts ...Option) *Machine {
	m := &Machine{
		clock:    SystemClock(),
		log:      zap.NewNop(),
		escrow:   uuid.NewString(),
		registry: NewRegistry(),
		proceeds: ledger.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EscrowAccount returns the party identity the machine holds items under.
// Sellers must approve this account with their custodian before listing.
func (m *Machine) EscrowAccount() string {
	return m.escrow
}

// sweepExpired resolves a lapsed listing before the caller reads liveness:
// if the window has elapsed the slot is cleared and the item pushed back to
// the seller. The slot is cleared before the transfer; a failed transfer
// restores it and aborts the calling operation. Idempotent. Caller holds m.mu.
func (m *Machine) sweepExpired(now time.Time) error {
	l := m.registry.Current()
	if l == nil || !l.Expired(now) {
		return nil
	}

	m.registry.Clear()
	if err := l.Custodian.Transfer(l.ItemID, m.escrow, m.escrow, l.Seller); err != nil {
		m.registry.restore(l)
		return fmt.Errorf("returning expired item %s to seller: %w", l.ItemID, err)
	}

	m.log.Info("listing expired unsold",
		zap.String("listing_id", l.ID),
		zap.String("item_id", l.ItemID),
		zap.String("seller", l.Seller))
	return nil
}

// IsLive reports whether a listing currently occupies the slot, sweeping a
// lapsed one first.
func (m *Machine) IsLive() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sweepExpired(m.clock.Now()); err != nil {
		return false, err
	}
	return m.registry.Current() != nil, nil
}

// Price returns the current decayed price of the live listing.
func (m *Machine) Price() (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if err := m.sweepExpired(now); err != nil {
		return decimal.Zero, err
	}
	l := m.registry.Current()
	if l == nil {
		return decimal.Zero, ErrNoActiveListing
	}
	return core.CurrentPrice(*l, now), nil
}

// CreateListing opens a new listing and pulls the item into escrow. A lapsed
// listing is swept first, so creating item N+1 succeeds in the same call in
// which item N's auction lapses. The record and the escrow pull are
// all-or-nothing: if the custodian rejects the pull, no record is retained
// and the call fails with ErrEscrowFailed.
func (m *Machine) CreateListing(seller, itemID string, custodian custody.Custodian, startTime, endTime time.Time, startPrice, reservePrice decimal.Decimal) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sweepExpired(m.clock.Now()); err != nil {
		return "", err
	}

	l, err := core.NewListing(seller, itemID, custodian, startTime, endTime, startPrice, reservePrice)
	if err != nil {
		return "", err
	}
	stored, err := m.registry.Create(l)
	if err != nil {
		return "", err
	}

	if err := custodian.Transfer(itemID, m.escrow, seller, m.escrow); err != nil {
		m.registry.Clear()
		return "", fmt.Errorf("%w: %v", ErrEscrowFailed, err)
	}

	m.log.Info("listing created",
		zap.String("listing_id", stored.ID),
		zap.String("item_id", itemID),
		zap.String("seller", seller),
		zap.Time("start_time", stored.StartTime),
		zap.Time("end_time", stored.EndTime),
		zap.String("start_price", stored.StartPrice.String()),
		zap.String("reserve_price", stored.ReservePrice.String()))
	return stored.ID, nil
}

// Bid settles the live listing if the payment covers the current price. The
// seller is credited the clearing price, not the full payment; the
// difference comes back to the bidder as the receipt's refund. Settlement is
// all-or-nothing: a failed item delivery restores the slot and the ledger,
// leaving every balance and the escrowed item as they were before the call.
func (m *Machine) Bid(bidder string, payment decimal.Decimal) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if err := m.sweepExpired(now); err != nil {
		return nil, err
	}
	l := m.registry.Current()
	if l == nil {
		return nil, ErrNoActiveListing
	}

	price := core.CurrentPrice(*l, now)
	if !core.PaymentMeetsPrice(payment, price) {
		return nil, fmt.Errorf("%w: payment %s, price %s", ErrUnderpayment, payment, price)
	}

	// Custody must be validated before any balance mutation: a reentrant
	// settlement would have already moved the item out of escrow.
	owner, err := l.Custodian.OwnerOf(l.ItemID)
	if err != nil {
		return nil, fmt.Errorf("checking custody of item %s: %w", l.ItemID, err)
	}
	if owner != m.escrow {
		return nil, fmt.Errorf("%w: item %s held by %s", ErrCustodyMismatch, l.ItemID, owner)
	}

	// Effects before external calls: clear the slot and credit the seller,
	// then deliver the item.
	m.registry.Clear()
	m.proceeds.Credit(l.Seller, price)

	if err := l.Custodian.Transfer(l.ItemID, m.escrow, m.escrow, bidder); err != nil {
		if derr := m.proceeds.Debit(l.Seller, price); derr != nil {
			m.log.Error("failed to compensate seller credit", zap.String("seller", l.Seller), zap.Error(derr))
		}
		m.registry.restore(l)
		return nil, fmt.Errorf("delivering item %s to bidder: %w", l.ItemID, err)
	}

	refund := payment.Sub(price)
	receipt := &Receipt{
		ListingID:      l.ID,
		ItemID:         l.ItemID,
		Seller:         l.Seller,
		Bidder:         bidder,
		Price:          price,
		Refund:         refund,
		SettlementHash: core.ComputeSettlementHash(l.ID, price, bidder),
	}

	m.log.Info("listing settled",
		zap.String("listing_id", l.ID),
		zap.String("item_id", l.ItemID),
		zap.String("bidder", bidder),
		zap.String("price", price.String()),
		zap.String("refund", refund.String()))
	return receipt, nil
}

// Withdraw drains the party's full proceeds balance and returns the amount
// transferred. An empty balance is a benign no-op returning zero.
func (m *Machine) Withdraw(party string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sweepExpired(m.clock.Now()); err != nil {
		return decimal.Zero, err
	}

	amount := m.proceeds.Withdraw(party)
	if amount.IsPositive() {
		m.log.Info("proceeds withdrawn",
			zap.String("party", party),
			zap.String("amount", amount.String()))
	}
	return amount, nil
}

// Proceeds returns the party's withdrawable balance without draining it.
func (m *Machine) Proceeds(party string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proceeds.Balance(party)
}
