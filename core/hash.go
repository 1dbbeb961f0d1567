package core

import (
	"crypto/sha256"
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeSettlementHash computes the fingerprint recorded on a bid receipt.
// It binds the listing, the clearing price, and the winning bidder so a
// settlement can be verified after the listing slot has been cleared.
//
// Formula: SHA256(listing_id + "|" + price + "|" + bidder)
//
// The price is formatted to exactly 6 decimal places to ensure consistent
// hashing regardless of the decimal's internal scale.
func ComputeSettlementHash(listingID string, price decimal.Decimal, bidder string) string {
	data := fmt.Sprintf("%s|%s|%s", listingID, price.StringFixed(6), bidder)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
