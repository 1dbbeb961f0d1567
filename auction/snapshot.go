package auction

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"

	"github.com/akhoshrozeh/dutch-auction/core"
	"github.com/akhoshrozeh/dutch-auction/custody"
)

// snapshot is the persisted state surface of the machine: the escrow account,
// the single listing slot, and the proceeds balances. Prices and balances are
// stored as strings and instants as unix seconds so the encoding is stable
// across decimal scales and time zones.
type snapshot struct {
	EscrowAccount string            `cbor:"escrow_account"`
	Listing       *listingRecord    `cbor:"listing,omitempty"`
	Balances      map[string]string `cbor:"balances"`
}

type listingRecord struct {
	ID           string `cbor:"id"`
	Seller       string `cbor:"seller"`
	ItemID       string `cbor:"item_id"`
	StartTime    int64  `cbor:"start_time"`
	EndTime      int64  `cbor:"end_time"`
	StartPrice   string `cbor:"start_price"`
	ReservePrice string `cbor:"reserve_price"`
}

// Export encodes the machine's persisted state as CBOR. The listing's
// custodian reference is not serialized; Restore re-binds one.
func (m *Machine) Export() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := snapshot{
		EscrowAccount: m.escrow,
		Balances:      make(map[string]string),
	}
	for party, balance := range m.proceeds.Balances() {
		snap.Balances[party] = balance.String()
	}
	if l := m.registry.Current(); l != nil {
		snap.Listing = &listingRecord{
			ID:           l.ID,
			Seller:       l.Seller,
			ItemID:       l.ItemID,
			StartTime:    l.StartTime.Unix(),
			EndTime:      l.EndTime.Unix(),
			StartPrice:   l.StartPrice.String(),
			ReservePrice: l.ReservePrice.String(),
		}
	}
	return cbor.Marshal(snap)
}

// Restore replaces the machine's state with a previously exported snapshot,
// re-binding the supplied custodian to the restored listing. The custodian
// must still hold the listed item under the snapshot's escrow account.
//
// Restoring over a machine whose slot is occupied fails with ErrSlotOccupied:
// discarding a live listing would orphan its escrowed item. Settle or sweep
// the current listing first.
func (m *Machine) Restore(data []byte, custodian custody.Custodian) error {
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	balances := make(map[string]decimal.Decimal, len(snap.Balances))
	for party, raw := range snap.Balances {
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("decoding balance for %s: %w", party, err)
		}
		balances[party] = balance
	}

	var restored *core.Listing
	if rec := snap.Listing; rec != nil {
		startPrice, err := decimal.NewFromString(rec.StartPrice)
		if err != nil {
			return fmt.Errorf("decoding start price: %w", err)
		}
		reservePrice, err := decimal.NewFromString(rec.ReservePrice)
		if err != nil {
			return fmt.Errorf("decoding reserve price: %w", err)
		}
		l := core.Listing{
			ID:           rec.ID,
			Seller:       rec.Seller,
			ItemID:       rec.ItemID,
			Custodian:    custodian,
			StartTime:    time.Unix(rec.StartTime, 0).UTC(),
			EndTime:      time.Unix(rec.EndTime, 0).UTC(),
			StartPrice:   startPrice,
			ReservePrice: reservePrice,
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("restored listing invalid: %w", err)
		}
		restored = &l
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry.Current() != nil {
		return fmt.Errorf("%w: restoring would discard the live listing", ErrSlotOccupied)
	}

	m.escrow = snap.EscrowAccount
	m.proceeds.Load(balances)
	if restored != nil {
		m.registry.restore(restored)
	}
	return nil
}
