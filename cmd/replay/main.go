// replay feeds a JSON event dump through the derivation engine and prints
// the resulting views for one pair. Useful for eyeballing book state from a
// captured session without a live chain connection.
//
//	replay -events session.json -base DAPP:0xaa.. -quote mETH:0xbb..
//
// The dump is a JSON array of objects:
//
//	{"kind":"placed","id":"1","user":"0x..","tokenGet":"0x..","amountGet":"100000000000000000000",
//	 "tokenGive":"0x..","amountGive":"10000000000000000000","timestamp":1700000000,"creator":"0x.."}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/dexlens/pkg/exchange"
)

type dumpEvent struct {
	Kind       string `json:"kind"` // "placed" | "cancelled" | "filled"
	ID         string `json:"id"`
	User       string `json:"user"`
	TokenGet   string `json:"tokenGet"`
	AmountGet  string `json:"amountGet"`
	TokenGive  string `json:"tokenGive"`
	AmountGive string `json:"amountGive"`
	Timestamp  uint64 `json:"timestamp"`
	Creator    string `json:"creator,omitempty"`
}

func main() {
	eventsPath := flag.String("events", "", "path to JSON event dump")
	baseSpec := flag.String("base", "", "base token as SYMBOL:0xaddress")
	quoteSpec := flag.String("quote", "", "quote token as SYMBOL:0xaddress")
	flag.Parse()

	if *eventsPath == "" || *baseSpec == "" || *quoteSpec == "" {
		flag.Usage()
		os.Exit(2)
	}

	market, err := parseMarket(*baseSpec, *quoteSpec)
	if err != nil {
		log.Fatalf("market: %v", err)
	}

	raw, err := os.ReadFile(*eventsPath)
	if err != nil {
		log.Fatalf("read events: %v", err)
	}
	var dump []dumpEvent
	if err := json.Unmarshal(raw, &dump); err != nil {
		log.Fatalf("parse events: %v", err)
	}

	eventLog := exchange.NewEventLog(exchange.DefaultActivityCap)
	for i, de := range dump {
		kind, ev, err := toOrderEvent(de)
		if err != nil {
			log.Fatalf("event %d: %v", i, err)
		}
		if err := eventLog.Append(kind, ev); err != nil {
			log.Fatalf("event %d: %v", i, err)
		}
	}

	open := exchange.OpenOrders(
		eventLog.Snapshot(exchange.KindPlaced),
		eventLog.Snapshot(exchange.KindCancelled),
		eventLog.Snapshot(exchange.KindFilled),
	)
	book := exchange.Book(open, market)
	tape := exchange.TradeTape(eventLog.Snapshot(exchange.KindFilled), market)
	chart := exchange.PriceChart(eventLog.Snapshot(exchange.KindFilled), market)

	fmt.Printf("market %s: %d placed, %d cancelled, %d filled, %d open\n\n",
		market.Pair(),
		eventLog.Len(exchange.KindPlaced),
		eventLog.Len(exchange.KindCancelled),
		eventLog.Len(exchange.KindFilled),
		len(open),
	)

	fmt.Println("order book (rate desc):")
	printRows("  buy", book.Buys)
	printRows("  sell", book.Sells)

	fmt.Println("\ntrade tape (most recent first):")
	printRows("  trade", tape)

	fmt.Printf("\ncandles (last price %v %s):\n", chart.LastPrice, chart.LastPriceChange)
	for _, c := range chart.Candles {
		fmt.Printf("  %s  o=%v h=%v l=%v c=%v\n",
			c.Start.Format("2006-01-02 15:04"), c.Open, c.High, c.Low, c.Close)
	}
}

func printRows(prefix string, rows []exchange.DecoratedOrder) {
	for _, d := range rows {
		fmt.Printf("%s id=%s %s %s @ %v (%s)\n",
			prefix, d.ID, d.BaseAmount.String(), d.Side, d.Rate, d.DisplayTime)
	}
}

func toOrderEvent(de dumpEvent) (exchange.EventKind, exchange.OrderEvent, error) {
	var kind exchange.EventKind
	switch de.Kind {
	case "placed":
		kind = exchange.KindPlaced
	case "cancelled":
		kind = exchange.KindCancelled
	case "filled":
		kind = exchange.KindFilled
	default:
		return 0, exchange.OrderEvent{}, fmt.Errorf("unknown kind %q", de.Kind)
	}

	amountGet, ok := new(big.Int).SetString(de.AmountGet, 10)
	if !ok {
		return 0, exchange.OrderEvent{}, fmt.Errorf("bad amountGet %q", de.AmountGet)
	}
	amountGive, ok := new(big.Int).SetString(de.AmountGive, 10)
	if !ok {
		return 0, exchange.OrderEvent{}, fmt.Errorf("bad amountGive %q", de.AmountGive)
	}

	ev := exchange.OrderEvent{
		ID:         de.ID,
		User:       common.HexToAddress(de.User),
		TokenGet:   common.HexToAddress(de.TokenGet),
		AmountGet:  amountGet,
		TokenGive:  common.HexToAddress(de.TokenGive),
		AmountGive: amountGive,
		Timestamp:  de.Timestamp,
	}
	if de.Creator != "" {
		ev.Creator = common.HexToAddress(de.Creator)
	}
	return kind, ev, nil
}

func parseMarket(baseSpec, quoteSpec string) (exchange.Market, error) {
	baseSym, baseAddr, err := splitSpec(baseSpec)
	if err != nil {
		return exchange.Market{}, err
	}
	quoteSym, quoteAddr, err := splitSpec(quoteSpec)
	if err != nil {
		return exchange.Market{}, err
	}
	return exchange.Market{
		BaseSymbol:  baseSym,
		QuoteSymbol: quoteSym,
		Base:        baseAddr,
		Quote:       quoteAddr,
	}, nil
}

func splitSpec(s string) (string, common.Address, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			if !common.IsHexAddress(s[i+1:]) {
				return "", common.Address{}, fmt.Errorf("%q is not an address", s[i+1:])
			}
			return s[:i], common.HexToAddress(s[i+1:]), nil
		}
	}
	return "", common.Address{}, fmt.Errorf("token %q must be SYMBOL:0xaddress", s)
}
