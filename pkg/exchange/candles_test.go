package exchange

import (
	"testing"
	"time"
)

// tradeAt builds a fill whose rate is rate (base amount = rate*100, quote
// amount = 100) at the given timestamp.
func tradeAt(id string, rate int64, ts uint64) OrderEvent {
	return fill(buy(id, alice, rate*100, 100, ts), bob)
}

func TestPriceChartOHLC(t *testing.T) {
	base := uint64(1700000000 - 1700000000%3600) // hour-aligned
	trades := []OrderEvent{
		tradeAt("1", 10, base+10),
		tradeAt("2", 12, base+20),
		tradeAt("3", 9, base+30),
		tradeAt("4", 11, base+40),
	}

	view := PriceChart(trades, dappMETH)

	if len(view.Candles) != 1 {
		t.Fatalf("candles = %d, want 1", len(view.Candles))
	}
	c := view.Candles[0]
	if c.Open != 10 || c.High != 12 || c.Low != 9 || c.Close != 11 {
		t.Errorf("OHLC = %v/%v/%v/%v, want 10/12/9/11", c.Open, c.High, c.Low, c.Close)
	}
	if want := time.Unix(int64(base), 0).UTC(); !c.Start.Equal(want) {
		t.Errorf("bucket start = %v, want %v", c.Start, want)
	}
}

func TestPriceChartBucketsByHour(t *testing.T) {
	base := uint64(1700000000 - 1700000000%3600)
	trades := []OrderEvent{
		tradeAt("1", 10, base+10),
		tradeAt("2", 11, base+3599),
		tradeAt("3", 8, base+3600), // next hour
		tradeAt("4", 9, base+7300), // hour after that
	}

	view := PriceChart(trades, dappMETH)

	if len(view.Candles) != 3 {
		t.Fatalf("candles = %d, want 3", len(view.Candles))
	}
	for i := 1; i < len(view.Candles); i++ {
		if !view.Candles[i].Start.After(view.Candles[i-1].Start) {
			t.Errorf("bucket starts not strictly increasing at %d", i)
		}
	}
	if view.Candles[0].Close != 11 || view.Candles[1].Open != 8 || view.Candles[2].Open != 9 {
		t.Errorf("bucket contents wrong: %+v", view.Candles)
	}
}

func TestPriceChartSortsBeforeBucketing(t *testing.T) {
	// Out-of-order delivery within the filled stream must not corrupt OHLC.
	base := uint64(1700000000 - 1700000000%3600)
	trades := []OrderEvent{
		tradeAt("3", 9, base+30),
		tradeAt("1", 10, base+10),
		tradeAt("4", 11, base+40),
		tradeAt("2", 12, base+20),
	}

	view := PriceChart(trades, dappMETH)

	c := view.Candles[0]
	if c.Open != 10 || c.High != 12 || c.Low != 9 || c.Close != 11 {
		t.Errorf("OHLC = %v/%v/%v/%v, want 10/12/9/11", c.Open, c.High, c.Low, c.Close)
	}
}

func TestPriceChartLastPrice(t *testing.T) {
	base := uint64(1700000000)

	tests := []struct {
		name       string
		trades     []OrderEvent
		wantPrice  float64
		wantChange string
	}{
		{"no trades", nil, 0, "+"},
		{"one trade defaults", []OrderEvent{tradeAt("1", 10, base)}, 0, "+"},
		{
			"rising",
			[]OrderEvent{tradeAt("1", 10, base), tradeAt("2", 12, base+10)},
			12, "+",
		},
		{
			"falling",
			[]OrderEvent{tradeAt("1", 10, base), tradeAt("2", 7, base+10)},
			7, "-",
		},
		{
			"flat counts as non-decreasing",
			[]OrderEvent{tradeAt("1", 10, base), tradeAt("2", 10, base+10)},
			10, "+",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := PriceChart(tt.trades, dappMETH)
			if view.LastPrice != tt.wantPrice {
				t.Errorf("LastPrice = %v, want %v", view.LastPrice, tt.wantPrice)
			}
			if view.LastPriceChange != tt.wantChange {
				t.Errorf("LastPriceChange = %q, want %q", view.LastPriceChange, tt.wantChange)
			}
		})
	}
}

func TestPriceChartScopesToMarket(t *testing.T) {
	base := uint64(1700000000)
	trades := []OrderEvent{
		tradeAt("1", 10, base),
		fill(order("2", alice, mDAI, tokens(5), mETH, tokens(1), base+10), bob),
	}

	view := PriceChart(trades, dappMETH)
	if len(view.Candles) != 1 {
		t.Errorf("candles = %d, want 1 (third-token trade excluded)", len(view.Candles))
	}
}

func TestPriceChartMissingMarket(t *testing.T) {
	view := PriceChart([]OrderEvent{tradeAt("1", 10, 1700000000)}, Market{})
	if len(view.Candles) != 0 || view.LastPrice != 0 {
		t.Errorf("invalid market must yield empty chart, got %+v", view)
	}
}
