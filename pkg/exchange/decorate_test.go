package exchange

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecorate_SideRule(t *testing.T) {
	giveQuote := buy("1", alice, 100, 10, 1000)
	giveBase := sell("2", bob, 100, 10, 1000)

	tests := []struct {
		name       string
		ev         OrderEvent
		market     Market
		wantSide   Side
		wantColor  string
		wantAction Side
	}{
		{"giving quote is a buy", giveQuote, dappMETH, SideBuy, ColorUp, SideSell},
		{"giving base is a sell", giveBase, dappMETH, SideSell, ColorDown, SideBuy},
		// The same order classifies differently under the swapped pair.
		{"buy flips to sell under swapped pair", giveQuote, methDAPP, SideSell, ColorDown, SideBuy},
		{"sell flips to buy under swapped pair", giveBase, methDAPP, SideBuy, ColorUp, SideSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decorate(tt.ev, tt.market)
			if d.Side != tt.wantSide {
				t.Errorf("Side = %v, want %v", d.Side, tt.wantSide)
			}
			if d.SideColor != tt.wantColor {
				t.Errorf("SideColor = %v, want %v", d.SideColor, tt.wantColor)
			}
			if d.FillAction != tt.wantAction {
				t.Errorf("FillAction = %v, want %v", d.FillAction, tt.wantAction)
			}
		})
	}
}

func TestDecorate_Rate(t *testing.T) {
	tests := []struct {
		name string
		ev   OrderEvent
		want float64
	}{
		{"buy 100 base for 10 quote", buy("1", alice, 100, 10, 1000), 10},
		{"sell 100 base for 10 quote", sell("2", alice, 100, 10, 1000), 10},
		{"fractional rate", buy("3", alice, 1, 3, 1000), 0.33333},
		{"rounds half away from zero", order("4", alice, dapp, big.NewInt(15), mETH, big.NewInt(1000000), 1000), 0.00002},
		{"exact rate", buy("5", alice, 10, 4, 1000), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decorate(tt.ev, dappMETH)
			if d.Rate != tt.want {
				t.Errorf("Rate = %v, want %v", d.Rate, tt.want)
			}
		})
	}
}

func TestDecorate_RateReciprocalUnderSwappedPair(t *testing.T) {
	ev := buy("1", alice, 8, 2, 1000)

	fwd := Decorate(ev, dappMETH)
	rev := Decorate(ev, methDAPP)

	if fwd.Rate != 4 {
		t.Fatalf("forward Rate = %v, want 4", fwd.Rate)
	}
	if rev.Rate != 0.25 {
		t.Fatalf("reversed Rate = %v, want 0.25", rev.Rate)
	}
	if fwd.Side == rev.Side {
		t.Errorf("side did not flip under swapped pair: %v", fwd.Side)
	}
	// Legs swap roles but keep the same underlying amounts.
	if !fwd.BaseAmount.Equal(rev.QuoteAmount) || !fwd.QuoteAmount.Equal(rev.BaseAmount) {
		t.Errorf("legs not swapped: fwd base=%v quote=%v, rev base=%v quote=%v",
			fwd.BaseAmount, fwd.QuoteAmount, rev.BaseAmount, rev.QuoteAmount)
	}
}

func TestDecorate_HumanAmountsExact(t *testing.T) {
	// 123.456789012345678901 tokens: one more digit than float64 can hold.
	raw, ok := new(big.Int).SetString("123456789012345678901", 10)
	if !ok {
		t.Fatal("bad literal")
	}
	ev := order("1", alice, dapp, raw, mETH, tokens(1), 1000)

	d := Decorate(ev, dappMETH)
	want, err := decimal.NewFromString("123.456789012345678901")
	if err != nil {
		t.Fatal(err)
	}
	if !d.BaseAmount.Equal(want) {
		t.Errorf("BaseAmount = %v, want %v", d.BaseAmount, want)
	}
	if !d.QuoteAmount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("QuoteAmount = %v, want 1", d.QuoteAmount)
	}
}

func TestDecorate_DegenerateRate(t *testing.T) {
	zeroQuote := order("1", alice, dapp, tokens(100), mETH, big.NewInt(0), 1000)
	zeroBoth := order("2", alice, dapp, big.NewInt(0), mETH, big.NewInt(0), 1000)

	if r := Decorate(zeroQuote, dappMETH).Rate; !math.IsInf(r, 1) {
		t.Errorf("zero quote leg: Rate = %v, want +Inf", r)
	}
	if r := Decorate(zeroBoth, dappMETH).Rate; !math.IsNaN(r) {
		t.Errorf("zero both legs: Rate = %v, want NaN", r)
	}
}

func TestDecorate_DisplayTime(t *testing.T) {
	// 2024-03-05 14:07:09 UTC
	ev := buy("1", alice, 1, 1, 1709647629)
	d := Decorate(ev, dappMETH)
	want := "2:07:09pm Tue Mar 5"
	if d.DisplayTime != want {
		t.Errorf("DisplayTime = %q, want %q", d.DisplayTime, want)
	}
}

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name string
		id   *big.Int
		want string
	}{
		{"small id", big.NewInt(7), "7"},
		{"large id", new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil), "1000000000000000000000000000000"},
		{"nil id", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalID(tt.id); got != tt.want {
				t.Errorf("CanonicalID() = %q, want %q", got, tt.want)
			}
		})
	}
}
