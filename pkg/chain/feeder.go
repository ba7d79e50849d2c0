package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/dexlens/pkg/exchange"
	"github.com/uhyunpark/dexlens/pkg/util"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second

	// A stream that stayed up this long is considered healthy; the next
	// failure starts backoff from scratch.
	healthyStreamAge = time.Minute
)

// Feeder owns event delivery into the log: it backfills the historical range
// into a fresh log (swapped atomically, so readers never see a half-replaced
// session), then appends live events. On any failure it reconnects with
// capped exponential backoff and re-ingests the whole range. Downstream
// classification is id-idempotent, so at-least-once delivery is safe.
type Feeder struct {
	source  *ContractSource
	log     *exchange.EventLog
	logger  *zap.SugaredLogger
	clock   util.Clock
	start   *big.Int
	onEvent func(Event)
}

func NewFeeder(source *ContractSource, log *exchange.EventLog, logger *zap.SugaredLogger, clock util.Clock, startBlock uint64) *Feeder {
	return &Feeder{
		source: source,
		log:    log,
		logger: logger,
		clock:  clock,
		start:  new(big.Int).SetUint64(startBlock),
	}
}

// OnEvent registers a callback invoked after each live event lands in the
// log. Set before Run; used by the API layer to push view refreshes.
func (f *Feeder) OnEvent(fn func(Event)) {
	f.onEvent = fn
}

// Run blocks until ctx is cancelled.
func (f *Feeder) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		started := f.clock.Now()
		err := f.sync(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if f.clock.Now().Sub(started) >= healthyStreamAge {
			backoff = initialBackoff
		}

		f.logger.Warnw("event_stream_down", "err", err, "retry_in", backoff.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.clock.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// sync performs one full delivery cycle: backfill, atomic reload, then live
// tail until the subscription drops.
func (f *Feeder) sync(ctx context.Context) error {
	events, err := f.source.Backfill(ctx, f.start, nil)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	var placed, cancelled, filled []exchange.OrderEvent
	var activity []exchange.ActivityEvent
	for _, ev := range events {
		if ev.Order != nil {
			if err := ev.Order.Validate(); err != nil {
				f.logger.Warnw("event_rejected", "err", err)
				continue
			}
			switch ev.Kind {
			case exchange.KindPlaced:
				placed = append(placed, *ev.Order)
			case exchange.KindCancelled:
				cancelled = append(cancelled, *ev.Order)
			case exchange.KindFilled:
				filled = append(filled, *ev.Order)
			}
		}
		activity = append(activity, ev.Activity)
	}
	// Backfill arrives oldest first; the ring wants most recent first.
	for i, j := 0, len(activity)-1; i < j; i, j = i+1, j-1 {
		activity[i], activity[j] = activity[j], activity[i]
	}

	f.log.ReplaceAll(placed, cancelled, filled, activity)
	f.logger.Infow("backfill_complete",
		"placed", len(placed),
		"cancelled", len(cancelled),
		"filled", len(filled),
	)

	ch := make(chan Event, 256)
	sub, err := f.source.Subscribe(ctx, ch)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription: %w", err)
		case ev := <-ch:
			f.ingest(ev)
		}
	}
}

func (f *Feeder) ingest(ev Event) {
	if ev.Order != nil {
		if err := f.log.Append(ev.Kind, *ev.Order); err != nil {
			f.logger.Warnw("event_rejected", "err", err)
			return
		}
		f.logger.Debugw("event_ingested", "kind", ev.Kind.String(), "id", ev.Order.ID)
	}
	f.log.AppendActivity(ev.Activity)

	if f.onEvent != nil {
		f.onEvent(ev)
	}
}
