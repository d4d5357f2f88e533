package engine

import (
	"context"
	"sync/atomic"
	"time"

	"vega/domain/lob"
	"vega/domain/market"
	"vega/infra/affinity"
	"vega/infra/spsc"
	"vega/logging"
	"vega/metrics"
)

// Config sizes the engine's owned state.
type Config struct {
	MaxOrders      uint32
	MaxPriceLevels int
	MaxTraders     int
	InitialBalance int64
	Risk           RiskConfig

	// PinToCore pins the engine goroutine's thread; negative disables.
	PinToCore int

	// PopTimeout bounds the consumer's wait per dequeue so the stop
	// signal is observed within one timeout even on an empty queue.
	PopTimeout time.Duration
}

// DefaultConfig returns the simulator's standard sizing.
func DefaultConfig() Config {
	return Config{
		MaxOrders:      1_000_000,
		MaxPriceLevels: 1024,
		MaxTraders:     1000,
		InitialBalance: 1_000_000_000,
		Risk:           DefaultRiskConfig(),
		PinToCore:      -1,
		PopTimeout:     10 * time.Millisecond,
	}
}

// Engine is the consumer: it drains the event queue, gates each event
// through risk, dispatches to the book, and applies resulting trades to
// the maker and taker accounts.
type Engine struct {
	queue    *spsc.Queue[market.OrderEvent]
	book     *lob.OrderBook
	accounts *Accounts
	risk     *RiskChecker
	stats    *metrics.Stats
	logger   *logging.AsyncLogger

	// OnTrade, when set before Run, observes every fill after account
	// application (used to feed the trade broadcaster).
	OnTrade func(market.Trade)

	cfg             Config
	running         atomic.Bool
	eventsProcessed atomic.Uint64
}

// New wires an engine over the queue. logger may be nil.
func New(queue *spsc.Queue[market.OrderEvent], cfg Config, logger *logging.AsyncLogger) *Engine {
	e := &Engine{
		queue:    queue,
		book:     lob.NewOrderBook(cfg.MaxOrders, cfg.MaxPriceLevels),
		accounts: NewAccounts(cfg.MaxTraders, DefaultStripeCount),
		stats:    metrics.NewStats(),
		logger:   logger,
		cfg:      cfg,
	}
	e.risk = NewRiskChecker(cfg.Risk, e.accounts)
	e.book.SetTradeFunc(e.onTrade)
	return e
}

// Book exposes the order book for queries and tests.
func (e *Engine) Book() *lob.OrderBook { return e.book }

// Accounts exposes the account table.
func (e *Engine) Accounts() *Accounts { return e.accounts }

// Stats exposes the counter block.
func (e *Engine) Stats() *metrics.Stats { return e.stats }

// EventsProcessed returns the number of events fully handled.
func (e *Engine) EventsProcessed() uint64 { return e.eventsProcessed.Load() }

// Running reports whether the loop is active.
func (e *Engine) Running() bool { return e.running.Load() }

// Run consumes the queue until ctx is cancelled, then drains whatever is
// already queued and returns. Shutdown latency is bounded by PopTimeout.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)

	if e.cfg.PinToCore >= 0 {
		if err := affinity.PinThisThread(e.cfg.PinToCore); err != nil && e.logger != nil {
			e.logger.Logf("pin to core %d failed: %v", e.cfg.PinToCore, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for {
				ev, ok := e.queue.TryPop()
				if !ok {
					return
				}
				e.ProcessEvent(ev)
			}
		default:
		}

		ev, ok := e.queue.TryPopFor(e.cfg.PopTimeout)
		if !ok {
			continue
		}
		e.ProcessEvent(ev)
	}
}

// ProcessEvent applies one event. Exported for tests and the replay
// tool.
func (e *Engine) ProcessEvent(ev market.OrderEvent) {
	start := market.NowNanos()
	e.stats.OrdersReceived.Add(1)

	// Accounts are created lazily on first sight of a trader.
	if ev.Type != market.Cancel {
		e.accounts.GetOrCreate(ev.TraderID, e.cfg.InitialBalance)
	}

	if rr := e.risk.Check(ev); rr != market.Passed {
		e.stats.RejectedCount.Add(1)
		if e.logger != nil {
			e.logger.Logf("rejected order %d reason: %s", ev.OrderID, rr)
		}
		e.eventsProcessed.Add(1)
		e.recordLatency(ev.EnqueueTime, start)
		return
	}

	var resp market.OrderResponse
	switch ev.Type {
	case market.NewLimit:
		resp = e.book.AddLimit(ev.OrderID, ev.TraderID, ev.Side, ev.Price, ev.Qty)
	case market.NewMarket:
		resp = e.book.AddMarket(ev.OrderID, ev.TraderID, ev.Side, ev.Qty)
	case market.Cancel:
		resp = e.book.Cancel(ev.OrderID)
	case market.Modify:
		resp = e.book.Modify(ev.OrderID, ev.Qty, ev.Price)
	}

	e.eventsProcessed.Add(1)

	switch resp.Result {
	case market.Accepted, market.PartiallyFilled, market.FullyFilled:
		e.stats.OrdersAccepted.Add(1)
	case market.Cancelled:
		e.stats.OrdersCancelled.Add(1)
	case market.Modified:
		e.stats.OrdersModified.Add(1)
	}

	if resp.Success() && resp.QtyFilled > 0 {
		e.stats.FilledQty.Add(uint64(resp.QtyFilled))
	}

	e.recordLatency(ev.EnqueueTime, start)
}

func (e *Engine) onTrade(t market.Trade) {
	e.accounts.ApplyTrade(t.MakerTraderID, t.TakerTraderID, t.TakerSide, t.Price, t.Qty)

	e.stats.TradeCount.Add(1)
	e.stats.Volume.Add(uint64(t.Qty))

	if e.logger != nil {
		e.logger.Logf("trade %d @ %d maker=%d taker=%d", t.Qty, t.Price, t.MakerTraderID, t.TakerTraderID)
	}
	if e.OnTrade != nil {
		e.OnTrade(t)
	}
}

func (e *Engine) recordLatency(enqueueTime, processStart int64) {
	now := market.NowNanos()
	e.stats.Latency.Record(now - enqueueTime)
	e.stats.EngineLatency.Record(now - processStart)
}
