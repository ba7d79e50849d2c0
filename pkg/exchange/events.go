package exchange

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies one of the three order event streams emitted by the
// exchange contract.
type EventKind int

const (
	KindPlaced EventKind = iota
	KindCancelled
	KindFilled
)

func (k EventKind) String() string {
	switch k {
	case KindPlaced:
		return "placed"
	case KindCancelled:
		return "cancelled"
	case KindFilled:
		return "filled"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// OrderEvent is the canonical shape all three order event kinds are
// normalized to at the ingestion boundary. A cancel or fill shares the ID of
// the placed event it terminates. Amounts are integer base units (18-decimal
// fixed point); Timestamp is Unix seconds from the contract.
//
// For fills, User is the taker and Creator the maker. Creator is the zero
// address on placed/cancelled events.
type OrderEvent struct {
	ID         string
	User       common.Address
	TokenGet   common.Address
	AmountGet  *big.Int
	TokenGive  common.Address
	AmountGive *big.Int
	Timestamp  uint64
	Creator    common.Address
}

// CanonicalID converts a contract-side uint256 order id to the canonical
// string form used for identity matching. Ids from independent decode paths
// must compare equal, so the conversion happens exactly once, at ingestion.
func CanonicalID(id *big.Int) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// Validate rejects malformed events before they enter the log. Derivations
// downstream assume well-formed input once an event is accepted.
func (ev OrderEvent) Validate() error {
	if ev.ID == "" {
		return fmt.Errorf("order event: missing id")
	}
	if ev.User == (common.Address{}) {
		return fmt.Errorf("order event %s: missing user", ev.ID)
	}
	if ev.TokenGet == (common.Address{}) || ev.TokenGive == (common.Address{}) {
		return fmt.Errorf("order event %s: missing token address", ev.ID)
	}
	if ev.AmountGet == nil || ev.AmountGive == nil {
		return fmt.Errorf("order event %s: missing amount", ev.ID)
	}
	if ev.Timestamp == 0 {
		return fmt.Errorf("order event %s: missing timestamp", ev.ID)
	}
	return nil
}

// ActivityEvent is one entry of the transient recent-activity feed. Unlike
// order events it is keyed on the raw chain event identity (tx hash + log
// index), since deposits and withdrawals carry no order id.
type ActivityEvent struct {
	TxHash    common.Hash
	LogIndex  uint
	Label     string // "order", "cancel", "trade", "deposit", "withdraw"
	User      common.Address
	Token     common.Address
	Amount    *big.Int
	Timestamp uint64
}

// Identity returns the feed key for de-duplication across redeliveries.
func (a ActivityEvent) Identity() string {
	return fmt.Sprintf("%s:%d", a.TxHash.Hex(), a.LogIndex)
}
