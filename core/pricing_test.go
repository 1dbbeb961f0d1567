package core

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func weekListing(t *testing.T, startPrice, reservePrice string) Listing {
	t.Helper()

	start := time.Unix(2_000_000_000, 0).UTC()
	l, err := NewListing(
		"seller", "item-1", nil,
		start, start.Add(7*24*time.Hour),
		decimal.RequireFromString(startPrice),
		decimal.RequireFromString(reservePrice),
	)
	check.Nil(t, err)
	return l
}

func TestCurrentPrice_Endpoints(t *testing.T) {
	l := weekListing(t, "1.0", "0")

	// At and before the window start, the price is the start price.
	check.True(t, CurrentPrice(l, l.StartTime).Equal(l.StartPrice))
	check.True(t, CurrentPrice(l, l.StartTime.Add(-time.Hour)).Equal(l.StartPrice))

	// At and after the window end, the price is the reserve price.
	check.True(t, CurrentPrice(l, l.EndTime).Equal(l.ReservePrice))
	check.True(t, CurrentPrice(l, l.EndTime.Add(time.Hour)).Equal(l.ReservePrice))
}

func TestCurrentPrice_LinearDecayWalk(t *testing.T) {
	// 1.0 -> 0 over one week: each 10% of the window shaves off exactly 0.1.
	l := weekListing(t, "1.0", "0")
	step := 7 * 24 * time.Hour / 10

	for i := 0; i <= 10; i++ {
		now := l.StartTime.Add(time.Duration(i) * step)
		want := decimal.RequireFromString("1.0").Sub(
			decimal.RequireFromString("0.1").Mul(decimal.NewFromInt(int64(i))))

		got := CurrentPrice(l, now)
		check.True(t, want.Equal(got))
	}
}

func TestCurrentPrice_MidpointWithReserve(t *testing.T) {
	// 2.0 -> 0.5 over a week: at 50% elapsed the price is 1.25.
	l := weekListing(t, "2.0", "0.5")

	got := CurrentPrice(l, l.StartTime.Add(7*24*time.Hour/2))
	check.True(t, decimal.RequireFromString("1.25").Equal(got))
}

func TestCurrentPrice_NonIncreasing(t *testing.T) {
	l := weekListing(t, "3.7", "0.25")

	prev := CurrentPrice(l, l.StartTime)
	for now := l.StartTime; !now.After(l.EndTime); now = now.Add(97 * time.Minute) {
		got := CurrentPrice(l, now)

		check.True(t, got.LessThanOrEqual(prev))
		check.True(t, got.GreaterThanOrEqual(l.ReservePrice))
		check.True(t, got.LessThanOrEqual(l.StartPrice))
		prev = got
	}
}

func TestCurrentPrice_RoundsUpInAuctionFavor(t *testing.T) {
	// 1.0 -> 0 over 3 seconds. At t=1s the continuous price is 2/3; the
	// discount of 1/3 truncates to 0.3333, so the price rounds up to 0.6667
	// and never dips below the continuous-decay value.
	start := time.Unix(2_000_000_000, 0).UTC()
	l, err := NewListing(
		"seller", "item-1", nil,
		start, start.Add(3*time.Second),
		decimal.RequireFromString("1.0"), decimal.Zero,
	)
	check.Nil(t, err)

	got := CurrentPrice(l, start.Add(time.Second))
	check.True(t, decimal.RequireFromString("0.6667").Equal(got))
	check.True(t, got.GreaterThanOrEqual(decimal.RequireFromString("0.666666")))
}

func TestCurrentPrice_FlatWhenStartEqualsReserve(t *testing.T) {
	l := weekListing(t, "0.75", "0.75")

	for i := 0; i <= 4; i++ {
		now := l.StartTime.Add(time.Duration(i) * 42 * time.Hour)
		check.True(t, decimal.RequireFromString("0.75").Equal(CurrentPrice(l, now)))
	}
}

func TestPaymentMeetsPrice(t *testing.T) {
	price := decimal.RequireFromString("0.5")

	check.True(t, PaymentMeetsPrice(decimal.RequireFromString("0.5"), price))
	check.True(t, PaymentMeetsPrice(decimal.RequireFromString("0.5001"), price))
	check.True(t, PaymentMeetsPrice(decimal.RequireFromString("1.0"), price))
	check.False(t, PaymentMeetsPrice(decimal.RequireFromString("0.4999"), price))
	check.False(t, PaymentMeetsPrice(decimal.Zero, price))
}

func TestPaymentMeetsPrice_PaymentIsNeverRounded(t *testing.T) {
	price := decimal.RequireFromString("0.5")

	// A payment short of the price by less than the monetary precision is
	// still an underpayment; rounding it up would settle below price.
	check.False(t, PaymentMeetsPrice(decimal.RequireFromString("0.49999"), price))
	check.False(t, PaymentMeetsPrice(decimal.RequireFromString("0.4999999999"), price))

	// Sub-precision overpayments pass, with the excess refunded.
	check.True(t, PaymentMeetsPrice(decimal.RequireFromString("0.50001"), price))
}
