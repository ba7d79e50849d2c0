package exchange

import (
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Side of an order relative to the selected pair: a buy acquires base by
// giving quote, a sell is the inverse.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the counter-side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Display colors carried through to consumers, matching the upstream UI.
const (
	ColorUp   = "#25CE8F"
	ColorDown = "#F45353"
)

const displayTimeLayout = "3:04:05pm Mon Jan 2"

// ratePlaces is the significant-decimal precision of the quoted rate.
const ratePlaces = 5

// DecoratedOrder is an OrderEvent enriched with derived display and semantic
// fields. It is recomputed on every read and never persisted.
type DecoratedOrder struct {
	OrderEvent

	Side       Side
	SideColor  string
	FillAction Side // side a counterparty takes to fill this order

	// BaseAmount and QuoteAmount are the pair-token legs in human units,
	// scaled exactly from the 18-decimal base-unit amounts.
	BaseAmount  decimal.Decimal
	QuoteAmount decimal.Decimal

	// Rate is the pair rate rounded to 5 decimal places. A zero quote leg
	// propagates a non-finite sentinel (Inf/NaN): unknown, not an error.
	Rate float64

	DisplayTime string

	// RateColor is set on trade-tape rows only: direction versus the
	// chronologically preceding trade.
	RateColor string

	// Sign is set on account-relative trade rows only: "+" for a buy from
	// the account's perspective, "-" for a sell.
	Sign string
}

// Decorate derives the display fields of one order under the given market.
// Pure and total for a valid market; callers scope to the market (and check
// Valid) before decorating, never after.
func Decorate(ev OrderEvent, m Market) DecoratedOrder {
	var side Side
	var baseLeg, quoteLeg *big.Int
	if ev.TokenGive == m.Quote {
		side = SideBuy
		quoteLeg, baseLeg = ev.AmountGive, ev.AmountGet
	} else {
		side = SideSell
		baseLeg, quoteLeg = ev.AmountGive, ev.AmountGet
	}

	return DecoratedOrder{
		OrderEvent:  ev,
		Side:        side,
		SideColor:   colorFor(side),
		FillAction:  side.Opposite(),
		BaseAmount:  decimal.NewFromBigInt(baseLeg, -18),
		QuoteAmount: decimal.NewFromBigInt(quoteLeg, -18),
		Rate:        rate(baseLeg, quoteLeg),
		DisplayTime: time.Unix(int64(ev.Timestamp), 0).UTC().Format(displayTimeLayout),
	}
}

// rate divides the base leg by the quote leg and rounds half away from zero
// at 5 decimal places. The division runs on exact decimals, so precision
// survives large 18-decimal amounts that would not fit a float64 mantissa.
func rate(baseLeg, quoteLeg *big.Int) float64 {
	if quoteLeg.Sign() == 0 {
		if baseLeg.Sign() == 0 {
			return math.NaN()
		}
		return math.Inf(baseLeg.Sign())
	}
	q := decimal.NewFromBigInt(baseLeg, 0).
		DivRound(decimal.NewFromBigInt(quoteLeg, 0), ratePlaces)
	f, _ := q.Float64()
	return f
}

func colorFor(s Side) string {
	if s == SideBuy {
		return ColorUp
	}
	return ColorDown
}
