package engine

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"vega/domain/market"
	"vega/infra/affinity"
	"vega/infra/spsc"
)

// TraderConfig shapes the synthetic order stream.
type TraderConfig struct {
	NumTraders uint32
	Seed       uint64
	Orders     uint64

	BasePrice  market.Price // center price
	PriceRange int64        // +/- range around the center
	MinQty     market.Qty
	MaxQty     market.Qty

	ProbBuy    float64
	ProbLimit  float64 // vs market
	ProbCancel float64
	ProbModify float64

	// OrdersPerSecond rate-limits generation; zero means unlimited.
	// Orders are paced in bursts of BurstSize against a monotonic
	// deadline.
	OrdersPerSecond uint64
	BurstSize       uint64

	PinToCore int
}

// DefaultTraderConfig returns the simulator's standard distribution.
func DefaultTraderConfig() TraderConfig {
	return TraderConfig{
		NumTraders: 1,
		Seed:       12345,
		Orders:     1000,
		BasePrice:  10_000,
		PriceRange: 100,
		MinQty:     1,
		MaxQty:     100,
		ProbBuy:    0.5,
		ProbLimit:  0.95,
		ProbCancel: 0.1,
		ProbModify: 0.05,
		BurstSize:  10,
		PinToCore:  -1,
	}
}

// Trader is the single producer: it generates a deterministic random
// order stream and pushes it onto the engine queue, blocking when the
// queue is full. Cancels and modifies target previously sent orders.
type Trader struct {
	cfg   TraderConfig
	queue *spsc.Queue[market.OrderEvent]

	rng         *rand.Rand
	sentIDs     []market.OrderID
	nextOrderID uint64

	ordersSent atomic.Uint64
	running    atomic.Bool
}

// NewTrader builds a producer. startingOrderID must be unique across
// producers feeding the same engine.
func NewTrader(cfg TraderConfig, queue *spsc.Queue[market.OrderEvent], startingOrderID uint64) *Trader {
	// Bound the up-front reservation so a very large order budget does
	// not allocate its whole ID history at construction.
	const maxSentIDsHint = 1 << 20
	sentCap := cfg.Orders
	if sentCap > maxSentIDsHint {
		sentCap = maxSentIDsHint
	}
	return &Trader{
		cfg:         cfg,
		queue:       queue,
		rng:         rand.New(rand.NewSource(int64(cfg.Seed))),
		sentIDs:     make([]market.OrderID, 0, sentCap),
		nextOrderID: startingOrderID,
	}
}

// OrdersSent returns the number of events pushed so far.
func (t *Trader) OrdersSent() uint64 { return t.ordersSent.Load() }

// Running reports whether the generation loop is active.
func (t *Trader) Running() bool { return t.running.Load() }

// Run generates until the configured order count is reached or ctx is
// cancelled.
// The stop signal is observed between enqueues; a push blocked on a full
// queue unblocks only when the consumer pops.
func (t *Trader) Run(ctx context.Context) {
	t.running.Store(true)
	defer t.running.Store(false)

	if t.cfg.PinToCore >= 0 {
		_ = affinity.PinThisThread(t.cfg.PinToCore)
	}

	var nsPerOrder uint64
	if t.cfg.OrdersPerSecond > 0 {
		nsPerOrder = 1_000_000_000 / t.cfg.OrdersPerSecond
	}
	burstDeadline := market.NowNanos()
	burstCount := uint64(0)

	for t.ordersSent.Load() < t.cfg.Orders {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if nsPerOrder > 0 && burstCount >= t.cfg.BurstSize {
			burstDeadline += int64(nsPerOrder * t.cfg.BurstSize)
			if sleep := burstDeadline - market.NowNanos(); sleep > 0 {
				time.Sleep(time.Duration(sleep))
			}
			burstCount = 0
		}

		ev := t.generate()
		t.queue.Push(ev)

		if ev.Type == market.NewLimit || ev.Type == market.NewMarket {
			t.sentIDs = append(t.sentIDs, ev.OrderID)
		}
		t.ordersSent.Add(1)
		burstCount++
	}
}

func (t *Trader) generate() market.OrderEvent {
	r := t.rng.Float64()

	isCancel := r < t.cfg.ProbCancel && len(t.sentIDs) > 0
	isModify := !isCancel && r < t.cfg.ProbCancel+t.cfg.ProbModify && len(t.sentIDs) > 0

	if isCancel {
		return market.CancelEvent(t.randomSentID())
	}
	if isModify {
		return market.ModifyEvent(t.randomSentID(), t.randomQty(), t.randomPrice())
	}

	id := market.OrderID(t.nextOrderID)
	t.nextOrderID++
	trader := market.TraderID(t.rng.Intn(int(t.cfg.NumTraders)))

	side := market.Sell
	if t.rng.Float64() < t.cfg.ProbBuy {
		side = market.Buy
	}
	qty := t.randomQty()

	if t.rng.Float64() < t.cfg.ProbLimit {
		return market.NewLimitEvent(id, trader, side, t.randomPrice(), qty)
	}
	return market.NewMarketEvent(id, trader, side, qty)
}

func (t *Trader) randomSentID() market.OrderID {
	return t.sentIDs[t.rng.Intn(len(t.sentIDs))]
}

func (t *Trader) randomPrice() market.Price {
	lo := int64(t.cfg.BasePrice) - t.cfg.PriceRange
	return market.Price(lo + t.rng.Int63n(2*t.cfg.PriceRange+1))
}

func (t *Trader) randomQty() market.Qty {
	return t.cfg.MinQty + market.Qty(t.rng.Int63n(int64(t.cfg.MaxQty-t.cfg.MinQty)+1))
}
