package exchange

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Shared fixtures for the derivation tests. Token and account addresses are
// arbitrary but distinct; amounts use 18-decimal base units like the chain.

var (
	dapp  = addr(0xa1)
	mETH  = addr(0xa2)
	mDAI  = addr(0xa3)
	alice = addr(0x11)
	bob   = addr(0x22)
	carol = addr(0x33)

	dappMETH = Market{BaseSymbol: "DAPP", QuoteSymbol: "mETH", Base: dapp, Quote: mETH}
	methDAPP = Market{BaseSymbol: "mETH", QuoteSymbol: "DAPP", Base: mETH, Quote: dapp}
)

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

// tokens scales a whole-number amount to 18-decimal base units.
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func order(id string, user common.Address, tokenGet common.Address, amountGet *big.Int, tokenGive common.Address, amountGive *big.Int, ts uint64) OrderEvent {
	return OrderEvent{
		ID:         id,
		User:       user,
		TokenGet:   tokenGet,
		AmountGet:  amountGet,
		TokenGive:  tokenGive,
		AmountGive: amountGive,
		Timestamp:  ts,
	}
}

// buy returns an order acquiring base (DAPP) by giving quote (mETH) under
// dappMETH, priced at baseAmt/quoteAmt.
func buy(id string, user common.Address, baseAmt, quoteAmt int64, ts uint64) OrderEvent {
	return order(id, user, dapp, tokens(baseAmt), mETH, tokens(quoteAmt), ts)
}

// sell returns an order giving base (DAPP) for quote (mETH) under dappMETH.
func sell(id string, user common.Address, baseAmt, quoteAmt int64, ts uint64) OrderEvent {
	return order(id, user, mETH, tokens(quoteAmt), dapp, tokens(baseAmt), ts)
}

// fill marks ev as a trade taken by taker against maker.
func fill(ev OrderEvent, maker common.Address) OrderEvent {
	ev.Creator = maker
	return ev
}

func ids(orders []OrderEvent) []string {
	out := make([]string, len(orders))
	for i, ev := range orders {
		out[i] = ev.ID
	}
	return out
}

func decoratedIDs(orders []DecoratedOrder) []string {
	out := make([]string, len(orders))
	for i, d := range orders {
		out[i] = d.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
