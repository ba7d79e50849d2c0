package api

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/dexlens/pkg/exchange"
)

// API response types for REST endpoints and WebSocket messages

// MarketInfo describes one configured trading pair.
type MarketInfo struct {
	Pair        string `json:"pair"`        // e.g. "DAPP/mETH"
	BaseSymbol  string `json:"baseSymbol"`  // e.g. "DAPP"
	QuoteSymbol string `json:"quoteSymbol"` // e.g. "mETH"
	BaseToken   string `json:"baseToken"`   // token contract address
	QuoteToken  string `json:"quoteToken"`
}

// OrderRow is one decorated order or trade. Amounts are exact decimal
// strings; Rate is a formatted float so non-finite sentinels ("+Inf",
// "NaN") survive JSON encoding, which rejects non-finite numbers.
type OrderRow struct {
	ID          string `json:"id"`
	User        string `json:"user"`
	Creator     string `json:"creator,omitempty"`
	Side        string `json:"side"`
	SideColor   string `json:"sideColor"`
	FillAction  string `json:"fillAction"`
	BaseAmount  string `json:"baseAmount"`
	QuoteAmount string `json:"quoteAmount"`
	Rate        string `json:"rate"`
	RateColor   string `json:"rateColor,omitempty"`
	Sign        string `json:"sign,omitempty"`
	Timestamp   uint64 `json:"timestamp"`
	DisplayTime string `json:"displayTime"`
}

// OrderBookResponse is the live book for one pair, both sides sorted
// descending by rate.
type OrderBookResponse struct {
	Pair  string     `json:"pair"`
	Buys  []OrderRow `json:"buys"`
	Sells []OrderRow `json:"sells"`
}

// TradesResponse is the trade tape for one pair, most recent first.
type TradesResponse struct {
	Pair   string     `json:"pair"`
	Trades []OrderRow `json:"trades"`
}

// CandleRow is one hour-aligned OHLC bucket.
type CandleRow struct {
	Start int64  `json:"start"` // bucket start, Unix seconds UTC
	Open  string `json:"open"`
	High  string `json:"high"`
	Low   string `json:"low"`
	Close string `json:"close"`
}

// CandlesResponse is the charting series for one pair.
type CandlesResponse struct {
	Pair            string      `json:"pair"`
	Candles         []CandleRow `json:"candles"`
	LastPrice       string      `json:"lastPrice"`
	LastPriceChange string      `json:"lastPriceChange"`
}

// ActivityRow is one recent-activity feed entry.
type ActivityRow struct {
	TxHash    string `json:"txHash"`
	LogIndex  uint   `json:"logIndex"`
	Label     string `json:"label"`
	User      string `json:"user"`
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	Timestamp uint64 `json:"timestamp"`
}

// WSSubscribeRequest is the client->server subscription message.
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" | "unsubscribe"
	Channels []string `json:"channels"`
}

// WSMessage wraps a broadcast payload with its channel name.
type WSMessage struct {
	Channel string      `json:"channel"`
	Data    interface{} `json:"data"`
}

func newMarketInfo(m exchange.Market) MarketInfo {
	return MarketInfo{
		Pair:        m.Pair(),
		BaseSymbol:  m.BaseSymbol,
		QuoteSymbol: m.QuoteSymbol,
		BaseToken:   m.Base.Hex(),
		QuoteToken:  m.Quote.Hex(),
	}
}

func newOrderRow(d exchange.DecoratedOrder) OrderRow {
	row := OrderRow{
		ID:          d.ID,
		User:        d.User.Hex(),
		Side:        string(d.Side),
		SideColor:   d.SideColor,
		FillAction:  string(d.FillAction),
		BaseAmount:  d.BaseAmount.String(),
		QuoteAmount: d.QuoteAmount.String(),
		Rate:        formatRate(d.Rate),
		RateColor:   d.RateColor,
		Sign:        d.Sign,
		Timestamp:   d.Timestamp,
		DisplayTime: d.DisplayTime,
	}
	if d.Creator != (common.Address{}) {
		row.Creator = d.Creator.Hex()
	}
	return row
}

func newOrderRows(orders []exchange.DecoratedOrder) []OrderRow {
	rows := make([]OrderRow, len(orders))
	for i, d := range orders {
		rows[i] = newOrderRow(d)
	}
	return rows
}

func newCandleRows(candles []exchange.Candle) []CandleRow {
	rows := make([]CandleRow, len(candles))
	for i, c := range candles {
		rows[i] = CandleRow{
			Start: c.Start.Unix(),
			Open:  formatRate(c.Open),
			High:  formatRate(c.High),
			Low:   formatRate(c.Low),
			Close: formatRate(c.Close),
		}
	}
	return rows
}

func newActivityRows(feed []exchange.ActivityEvent) []ActivityRow {
	rows := make([]ActivityRow, len(feed))
	for i, ev := range feed {
		amount := "0"
		if ev.Amount != nil {
			amount = ev.Amount.String()
		}
		rows[i] = ActivityRow{
			TxHash:    ev.TxHash.Hex(),
			LogIndex:  ev.LogIndex,
			Label:     ev.Label,
			User:      ev.User.Hex(),
			Token:     ev.Token.Hex(),
			Amount:    amount,
			Timestamp: ev.Timestamp,
		}
	}
	return rows
}

// formatRate keeps non-finite rates representable: "+Inf"/"NaN" instead of a
// JSON encoding error.
func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
