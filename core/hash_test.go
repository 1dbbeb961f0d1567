package core

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeSettlementHash(t *testing.T) {
	listingID := "listing_123"
	price := decimal.RequireFromString("0.5")
	bidder := "bidder_456"

	hash := ComputeSettlementHash(listingID, price, bidder)

	// Verify hash is 64 characters (SHA256 hex encoding)
	if len(hash) != 64 {
		t.Errorf("ComputeSettlementHash() hash length = %d, want 64", len(hash))
	}

	// Verify hash contains only hex characters
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("ComputeSettlementHash() contains non-hex character: %c", c)
		}
	}

	// Same inputs should produce same hash (deterministic)
	hash2 := ComputeSettlementHash(listingID, price, bidder)
	if hash != hash2 {
		t.Errorf("ComputeSettlementHash() not deterministic")
	}

	// Different inputs should produce different hashes
	hash3 := ComputeSettlementHash(listingID, price.Add(decimal.NewFromInt(1)), bidder)
	if hash == hash3 {
		t.Errorf("Different prices should produce different hashes")
	}
	hash4 := ComputeSettlementHash(listingID, price, "other_bidder")
	if hash == hash4 {
		t.Errorf("Different bidders should produce different hashes")
	}

	// Verify exact hash calculation
	expectedData := fmt.Sprintf("%s|%s|%s", listingID, price.StringFixed(6), bidder)
	expectedHash := fmt.Sprintf("%x", sha256.Sum256([]byte(expectedData)))
	if hash != expectedHash {
		t.Errorf("ComputeSettlementHash() = %v, want %v", hash, expectedHash)
	}
}

func TestComputeSettlementHash_PriceFormatting(t *testing.T) {
	// Prices equal at 6 decimal places hash identically regardless of the
	// decimal's internal scale.
	hash1 := ComputeSettlementHash("listing-1", decimal.RequireFromString("0.5"), "bidder")
	hash2 := ComputeSettlementHash("listing-1", decimal.RequireFromString("0.500000"), "bidder")
	if hash1 != hash2 {
		t.Errorf("Prices with same 6 decimal places should produce same hash")
	}

	hash3 := ComputeSettlementHash("listing-1", decimal.RequireFromString("0.500001"), "bidder")
	if hash1 == hash3 {
		t.Errorf("Prices differing in the 6th decimal should produce different hashes")
	}
}
