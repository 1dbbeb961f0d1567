package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akhoshrozeh/dutch-auction/custody"
)

var (
	// ErrInvalidWindow is returned when the decay window does not end after it starts.
	ErrInvalidWindow = errors.New("listing window must end after it starts")

	// ErrInvalidPrice is returned when the start price is below the reserve
	// price, or the reserve price is negative.
	ErrInvalidPrice = errors.New("start price must be at least the reserve price, reserve must be non-negative")
)

// Listing describes the single item currently up for auction. All fields are
// set at creation and immutable thereafter; liveness is never stored, it is
// recomputed from the window against the clock.
type Listing struct {
	ID           string
	Seller       string
	ItemID       string
	Custodian    custody.Custodian
	StartTime    time.Time
	EndTime      time.Time
	StartPrice   decimal.Decimal
	ReservePrice decimal.Decimal
}

// NewListing builds a validated listing with a fresh v4 UUID. Prices are
// normalized to monetaryPrecision so the decay arithmetic and settlement
// comparisons all run at the same scale.
func NewListing(seller, itemID string, custodian custody.Custodian, startTime, endTime time.Time, startPrice, reservePrice decimal.Decimal) (Listing, error) {
	l := Listing{
		ID:           uuid.NewString(),
		Seller:       seller,
		ItemID:       itemID,
		Custodian:    custodian,
		StartTime:    startTime,
		EndTime:      endTime,
		StartPrice:   startPrice.Round(monetaryPrecision),
		ReservePrice: reservePrice.Round(monetaryPrecision),
	}
	if err := l.Validate(); err != nil {
		return Listing{}, err
	}
	return l, nil
}

// Validate checks the window and price invariants.
func (l Listing) Validate() error {
	if !l.EndTime.After(l.StartTime) {
		return ErrInvalidWindow
	}
	if l.ReservePrice.IsNegative() || l.StartPrice.LessThan(l.ReservePrice) {
		return ErrInvalidPrice
	}
	return nil
}

// Expired reports whether the decay window has elapsed at the supplied instant.
func (l Listing) Expired(now time.Time) bool {
	return !now.Before(l.EndTime)
}
