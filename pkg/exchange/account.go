package exchange

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// MyOpenOrders narrows the open order set to the given account's orders on
// one pair, decorated and sorted ascending by timestamp (oldest first,
// unlike the book's rate ordering).
func MyOpenOrders(account common.Address, m Market, open []OrderEvent) []DecoratedOrder {
	if !m.Valid() {
		return nil
	}

	out := make([]DecoratedOrder, 0)
	for _, ev := range open {
		if ev.User != account || !m.Includes(ev) {
			continue
		}
		out = append(out, Decorate(ev, m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// MyTrades narrows the trade stream to fills where the account was taker
// (User) or maker (Creator), sorted descending by timestamp. Side is
// account-relative: the taker's side comes straight from the give-token
// rule; a maker holds the inverse economic position, so their side is the
// opposite. Sign is "+" for a buy from the account's perspective, "-" for a
// sell.
func MyTrades(account common.Address, m Market, filled []OrderEvent) []DecoratedOrder {
	if !m.Valid() {
		return nil
	}

	out := make([]DecoratedOrder, 0)
	for _, ev := range filled {
		if ev.User != account && ev.Creator != account {
			continue
		}
		if !m.Includes(ev) {
			continue
		}

		d := Decorate(ev, m)
		if ev.User != account {
			d.Side = d.Side.Opposite()
			d.SideColor = colorFor(d.Side)
			d.FillAction = d.Side.Opposite()
		}
		if d.Side == SideBuy {
			d.Sign = "+"
		} else {
			d.Sign = "-"
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// MyActivity filters the recent-activity feed to entries whose counterparty
// equals the account. Used for transient notification only, never for book
// state, so the feed's most-recent-first order is kept as-is.
func MyActivity(account common.Address, feed []ActivityEvent) []ActivityEvent {
	out := make([]ActivityEvent, 0)
	for _, ev := range feed {
		if ev.User == account {
			out = append(out, ev)
		}
	}
	return out
}
