package exchange

import "sort"

// BookView is the live order book for one pair, partitioned by side. Both
// sides are sorted descending by rate. That single sort direction (rather
// than the conventional descending-bids/ascending-asks) reproduces the
// observed product behavior; see TestBookSortsBothSidesDescending before
// changing it.
type BookView struct {
	Market Market
	Buys   []DecoratedOrder
	Sells  []DecoratedOrder
}

// Book derives the book view from the open order set. Orders referencing any
// token outside the pair are excluded. An invalid market yields an empty
// view.
func Book(open []OrderEvent, m Market) BookView {
	if !m.Valid() {
		return BookView{}
	}

	view := BookView{Market: m}
	for _, ev := range open {
		if !m.Includes(ev) {
			continue
		}
		d := Decorate(ev, m)
		if d.Side == SideBuy {
			view.Buys = append(view.Buys, d)
		} else {
			view.Sells = append(view.Sells, d)
		}
	}
	sortByRateDesc(view.Buys)
	sortByRateDesc(view.Sells)
	return view
}

// TradeTape derives the historical trade list for one pair, most recent
// first. Each row's RateColor compares its rate to the immediately preceding
// trade in chronological order, so colors are assigned on the ascending-time
// pass before the final descending-time display sort. The first trade in
// time order carries no color.
func TradeTape(filled []OrderEvent, m Market) []DecoratedOrder {
	if !m.Valid() {
		return nil
	}

	scoped := scopeToMarket(filled, m)
	sortByTimeAsc(scoped)

	tape := make([]DecoratedOrder, 0, len(scoped))
	for i, ev := range scoped {
		d := Decorate(ev, m)
		if i > 0 {
			if d.Rate >= tape[i-1].Rate {
				d.RateColor = ColorUp
			} else {
				d.RateColor = ColorDown
			}
		}
		tape = append(tape, d)
	}

	sort.SliceStable(tape, func(i, j int) bool {
		return tape[i].Timestamp > tape[j].Timestamp
	})
	return tape
}

func scopeToMarket(events []OrderEvent, m Market) []OrderEvent {
	out := make([]OrderEvent, 0, len(events))
	for _, ev := range events {
		if m.Includes(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func sortByTimeAsc(events []OrderEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}

// sortByRateDesc orders decorated rows by rate, highest first. Non-finite
// rates compare false both ways and keep their arrival position.
func sortByRateDesc(orders []DecoratedOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Rate > orders[j].Rate
	})
}
