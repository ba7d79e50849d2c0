package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/uhyunpark/dexlens/pkg/exchange"
)

// exchangeABI covers the five events the engine consumes. The contract emits
// more; everything else is ignored at the decode boundary.
const exchangeABI = `[
	{"type":"event","name":"Deposit","inputs":[
		{"name":"token","type":"address"},
		{"name":"user","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"balance","type":"uint256"}]},
	{"type":"event","name":"Withdraw","inputs":[
		{"name":"token","type":"address"},
		{"name":"user","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"balance","type":"uint256"}]},
	{"type":"event","name":"Order","inputs":[
		{"name":"id","type":"uint256"},
		{"name":"user","type":"address"},
		{"name":"tokenGet","type":"address"},
		{"name":"amountGet","type":"uint256"},
		{"name":"tokenGive","type":"address"},
		{"name":"amountGive","type":"uint256"},
		{"name":"timestamp","type":"uint256"}]},
	{"type":"event","name":"Cancel","inputs":[
		{"name":"id","type":"uint256"},
		{"name":"user","type":"address"},
		{"name":"tokenGet","type":"address"},
		{"name":"amountGet","type":"uint256"},
		{"name":"tokenGive","type":"address"},
		{"name":"amountGive","type":"uint256"},
		{"name":"timestamp","type":"uint256"}]},
	{"type":"event","name":"Trade","inputs":[
		{"name":"id","type":"uint256"},
		{"name":"user","type":"address"},
		{"name":"tokenGet","type":"address"},
		{"name":"amountGet","type":"uint256"},
		{"name":"tokenGive","type":"address"},
		{"name":"amountGive","type":"uint256"},
		{"name":"creator","type":"address"},
		{"name":"timestamp","type":"uint256"}]}
]`

// Event is one decoded exchange contract event, normalized to the engine's
// canonical shapes. Order is nil for deposit/withdraw events, which feed the
// activity ring only.
type Event struct {
	Kind     exchange.EventKind
	Order    *exchange.OrderEvent
	Activity exchange.ActivityEvent
}

// LogClient is the slice of an Ethereum RPC client the source needs.
// *ethclient.Client satisfies it.
type LogClient interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// ContractSource decodes the exchange contract's event streams. It owns no
// state beyond the parsed ABI; delivery policy (backfill, reconnect, reload)
// lives in the Feeder.
type ContractSource struct {
	client  LogClient
	address common.Address
	abi     abi.ABI
	logger  *zap.SugaredLogger
}

func NewContractSource(client LogClient, address common.Address, logger *zap.SugaredLogger) (*ContractSource, error) {
	parsed, err := abi.JSON(strings.NewReader(exchangeABI))
	if err != nil {
		return nil, fmt.Errorf("parse exchange abi: %w", err)
	}
	return &ContractSource{
		client:  client,
		address: address,
		abi:     parsed,
		logger:  logger,
	}, nil
}

func (s *ContractSource) query(from, to *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{s.address},
	}
}

// Backfill fetches and decodes the historical range [from, to]; a nil to
// means latest. Events come back in log order (block, then log index).
func (s *ContractSource) Backfill(ctx context.Context, from, to *big.Int) ([]Event, error) {
	logs, err := s.client.FilterLogs(ctx, s.query(from, to))
	if err != nil {
		return nil, fmt.Errorf("filter logs: %w", err)
	}

	events := make([]Event, 0, len(logs))
	for _, lg := range logs {
		ev, ok := s.decode(lg)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Subscribe streams live decoded events into out until ctx is cancelled.
// The returned subscription's Err channel reports transport failures.
func (s *ContractSource) Subscribe(ctx context.Context, out chan<- Event) (ethereum.Subscription, error) {
	raw := make(chan types.Log, 256)
	sub, err := s.client.SubscribeFilterLogs(ctx, s.query(nil, nil), raw)
	if err != nil {
		return nil, fmt.Errorf("subscribe logs: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case lg := <-raw:
				ev, ok := s.decode(lg)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return sub, nil
}

// decode normalizes one raw log. Unknown topics and reorged-out logs are
// skipped; decode failures on known topics are logged and skipped, never
// fatal.
func (s *ContractSource) decode(lg types.Log) (Event, bool) {
	if lg.Removed || len(lg.Topics) == 0 {
		return Event{}, false
	}

	name := ""
	for n, ev := range s.abi.Events {
		if ev.ID == lg.Topics[0] {
			name = n
			break
		}
	}
	if name == "" {
		return Event{}, false
	}

	values, err := s.abi.Unpack(name, lg.Data)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnw("event_decode_failed", "event", name, "tx", lg.TxHash.Hex(), "err", err)
		}
		return Event{}, false
	}

	switch name {
	case "Order", "Cancel", "Trade":
		return s.decodeOrderEvent(name, lg, values)
	case "Deposit", "Withdraw":
		return s.decodeTransferEvent(name, lg, values)
	}
	return Event{}, false
}

func (s *ContractSource) decodeOrderEvent(name string, lg types.Log, values []interface{}) (Event, bool) {
	want := 7
	if name == "Trade" {
		want = 8
	}
	if len(values) != want {
		return Event{}, false
	}

	ev := exchange.OrderEvent{
		ID:         exchange.CanonicalID(values[0].(*big.Int)),
		User:       values[1].(common.Address),
		TokenGet:   values[2].(common.Address),
		AmountGet:  values[3].(*big.Int),
		TokenGive:  values[4].(common.Address),
		AmountGive: values[5].(*big.Int),
	}

	kind := exchange.KindPlaced
	label := "order"
	switch name {
	case "Cancel":
		kind, label = exchange.KindCancelled, "cancel"
		ev.Timestamp = values[6].(*big.Int).Uint64()
	case "Trade":
		kind, label = exchange.KindFilled, "trade"
		ev.Creator = values[6].(common.Address)
		ev.Timestamp = values[7].(*big.Int).Uint64()
	default:
		ev.Timestamp = values[6].(*big.Int).Uint64()
	}

	return Event{
		Kind:  kind,
		Order: &ev,
		Activity: exchange.ActivityEvent{
			TxHash:    lg.TxHash,
			LogIndex:  lg.Index,
			Label:     label,
			User:      ev.User,
			Token:     ev.TokenGive,
			Amount:    ev.AmountGive,
			Timestamp: ev.Timestamp,
		},
	}, true
}

func (s *ContractSource) decodeTransferEvent(name string, lg types.Log, values []interface{}) (Event, bool) {
	if len(values) != 4 {
		return Event{}, false
	}
	return Event{
		Activity: exchange.ActivityEvent{
			TxHash:   lg.TxHash,
			LogIndex: lg.Index,
			Label:    strings.ToLower(name),
			User:     values[1].(common.Address),
			Token:    values[0].(common.Address),
			Amount:   values[2].(*big.Int),
		},
	}, true
}
