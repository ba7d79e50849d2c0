package exchange

import "time"

// Candle is the OHLC summary of trade rates within one hour-aligned bucket.
type Candle struct {
	Start time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// PriceChartView is the charting series for one pair: one candle per
// non-empty hour, in chronological order, plus the latest traded rate and
// its direction versus the trade before it.
type PriceChartView struct {
	Market          Market
	Candles         []Candle
	LastPrice       float64
	LastPriceChange string // "+" if non-decreasing, else "-"
}

// PriceChart derives the candle series from the filled (trade) stream.
// Trades are scoped to the pair, explicitly re-sorted by timestamp (the
// bucketing below depends on chronological input, so delivery order is not
// trusted), and grouped by the UTC start-of-hour of each timestamp. Buckets
// are emitted in first-seen order, which equals chronological order on the
// sorted input. Fewer than two trades yields LastPrice 0 and a "+" change.
func PriceChart(filled []OrderEvent, m Market) PriceChartView {
	if !m.Valid() {
		return PriceChartView{}
	}

	scoped := scopeToMarket(filled, m)
	sortByTimeAsc(scoped)

	view := PriceChartView{Market: m, LastPriceChange: "+"}

	bucketIdx := make(map[int64]int)
	rates := make([]float64, 0, len(scoped))
	for _, ev := range scoped {
		d := Decorate(ev, m)
		rates = append(rates, d.Rate)

		start := time.Unix(int64(ev.Timestamp), 0).UTC().Truncate(time.Hour)
		key := start.Unix()
		i, ok := bucketIdx[key]
		if !ok {
			bucketIdx[key] = len(view.Candles)
			view.Candles = append(view.Candles, Candle{
				Start: start,
				Open:  d.Rate,
				High:  d.Rate,
				Low:   d.Rate,
				Close: d.Rate,
			})
			continue
		}
		c := &view.Candles[i]
		c.Close = d.Rate
		if d.Rate > c.High {
			c.High = d.Rate
		}
		if d.Rate < c.Low {
			c.Low = d.Rate
		}
	}

	if len(rates) >= 2 {
		last, secondLast := rates[len(rates)-1], rates[len(rates)-2]
		view.LastPrice = last
		if last >= secondLast {
			view.LastPriceChange = "+"
		} else {
			view.LastPriceChange = "-"
		}
	}
	return view
}
