package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 4 // 4 decimal places for prices (0.0001 precision)

// CurrentPrice returns the listing price at the supplied instant.
//
// The price decays linearly from StartPrice at StartTime down to ReservePrice
// at EndTime. Before the window it is StartPrice, at or after EndTime it is
// ReservePrice. The discount is rounded down to monetaryPrecision, which
// rounds the price itself up: the computed price never falls below the
// continuous-decay value, so a bidder can never underpay due to rounding.
//
// Pure function of the listing parameters and timestamp; any caller derives
// the same price for the same inputs.
func CurrentPrice(l Listing, now time.Time) decimal.Decimal {
	if !now.After(l.StartTime) {
		return l.StartPrice
	}
	if !now.Before(l.EndTime) {
		return l.ReservePrice
	}

	span := l.StartPrice.Sub(l.ReservePrice)
	elapsed := decimal.NewFromInt(now.Unix() - l.StartTime.Unix())
	window := decimal.NewFromInt(l.EndTime.Unix() - l.StartTime.Unix())

	discount := span.Mul(elapsed).Div(window).RoundDown(monetaryPrecision)
	return l.StartPrice.Sub(discount)
}

// PaymentMeetsPrice returns true if the payment covers the asking price.
// The price is normalized to monetaryPrecision; the payment is compared
// exactly, never rounded — rounding a payment up would let a bid settle
// below the current price and push a negative refund onto the receipt.
func PaymentMeetsPrice(payment, price decimal.Decimal) bool {
	return payment.GreaterThanOrEqual(price.Round(monetaryPrecision))
}
