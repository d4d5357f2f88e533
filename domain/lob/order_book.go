package lob

import (
	"sort"
	"sync"

	"vega/domain/market"
	"vega/infra/memory"
)

// TradeFunc observes each fill synchronously from within the matching
// loop, before the maker's slot is freed, so it always sees valid maker
// state.
type TradeFunc func(market.Trade)

// OrderBook keeps two dense sorted level slices (bids descending, asks
// ascending, no empty levels) over a fixed-capacity order pool, plus an
// order-id index holding exactly the set of live orders.
//
// A single internal mutex guards all operations. The engine goroutine is
// the only mutator; the lock exists so other goroutines may run read-only
// queries, at the cost of excluding them during matching.
type OrderBook struct {
	mu sync.Mutex

	pool   *memory.Pool[Order]
	orders map[market.OrderID]market.PoolIndex

	bids []PriceLevel // descending by price
	asks []PriceLevel // ascending by price

	onTrade TradeFunc

	totalTrades uint64
	totalVolume uint64
}

// NewOrderBook builds a book with a pool of maxOrders slots and level
// slices pre-sized to maxLevels per side.
func NewOrderBook(maxOrders uint32, maxLevels int) *OrderBook {
	return &OrderBook{
		pool:   memory.NewPool[Order](maxOrders),
		orders: make(map[market.OrderID]market.PoolIndex, maxOrders),
		bids:   make([]PriceLevel, 0, maxLevels),
		asks:   make([]PriceLevel, 0, maxLevels),
	}
}

// SetTradeFunc installs the fill observer.
func (b *OrderBook) SetTradeFunc(fn TradeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrade = fn
}

// AddLimit matches the incoming limit order against the opposite side and
// rests any remainder. Duplicate order IDs and pool exhaustion reject;
// trades committed before a pool-exhaustion reject persist.
func (b *OrderBook) AddLimit(id market.OrderID, trader market.TraderID, side market.Side, price market.Price, qty market.Qty) market.OrderResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLimitLocked(id, trader, side, price, qty)
}

func (b *OrderBook) addLimitLocked(id market.OrderID, trader market.TraderID, side market.Side, price market.Price, qty market.Qty) market.OrderResponse {
	resp := market.OrderResponse{Result: market.Rejected, OrderID: id}

	if _, dup := b.orders[id]; dup {
		return resp
	}

	remaining, trades := b.matchOrder(id, trader, side, price, qty, false)
	resp.TradeCount = trades
	resp.QtyFilled = qty - remaining
	resp.QtyRemaining = remaining

	if remaining <= 0 {
		resp.Result = market.FullyFilled
		return resp
	}

	idx, o := b.pool.Alloc()
	if o == nil {
		// Pool exhausted after matching: the trades above stay committed.
		resp.Result = market.Rejected
		return resp
	}
	*o = Order{
		OrderID:      id,
		TraderID:     trader,
		Side:         side,
		Price:        price,
		QtyRemaining: remaining,
		QtyOriginal:  qty,
		Timestamp:    market.NowNanos(),
		PrevIdx:      market.InvalidPoolIndex,
		NextIdx:      market.InvalidPoolIndex,
	}

	b.orders[id] = market.PoolIndex(idx)

	levels := b.sideLevels(side)
	li := b.findOrCreateLevel(levels, price, side == market.Buy)
	(*levels)[li].PushBack(b.pool, market.PoolIndex(idx))

	if trades > 0 {
		resp.Result = market.PartiallyFilled
	} else {
		resp.Result = market.Accepted
	}
	return resp
}

// AddMarket matches immediately against the opposite side; the remainder
// is discarded, never rested.
func (b *OrderBook) AddMarket(id market.OrderID, trader market.TraderID, side market.Side, qty market.Qty) market.OrderResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := market.OrderResponse{OrderID: id}
	remaining, trades := b.matchOrder(id, trader, side, 0, qty, true)
	resp.TradeCount = trades
	resp.QtyFilled = qty - remaining
	resp.QtyRemaining = remaining
	if remaining <= 0 {
		resp.Result = market.FullyFilled
	} else {
		resp.Result = market.PartiallyFilled
	}
	return resp
}

// Cancel removes a live order from the book.
func (b *OrderBook) Cancel(id market.OrderID) market.OrderResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := market.OrderResponse{Result: market.NotFound, OrderID: id}

	idx, ok := b.orders[id]
	if !ok {
		return resp
	}
	resp.QtyRemaining = b.pool.Get(uint32(idx)).QtyRemaining

	b.removeOrderLocked(idx)
	delete(b.orders, id)

	resp.Result = market.Cancelled
	return resp
}

// Modify updates an existing order. A pure quantity reduction at the same
// price keeps time priority; a price change or a quantity increase loses
// it (cancel + re-add). newPrice of zero means price unchanged.
func (b *OrderBook) Modify(id market.OrderID, newQty market.Qty, newPrice market.Price) market.OrderResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := market.OrderResponse{Result: market.NotFound, OrderID: id}

	idx, ok := b.orders[id]
	if !ok {
		return resp
	}
	o := b.pool.Get(uint32(idx))

	if newPrice != 0 && newPrice != o.Price {
		trader, side := o.TraderID, o.Side
		b.removeOrderLocked(idx)
		delete(b.orders, id)
		return b.addLimitLocked(id, trader, side, newPrice, newQty)
	}

	if newQty < o.QtyRemaining {
		levels := b.sideLevels(o.Side)
		if li := b.findLevel(*levels, o.Price, o.Side == market.Buy); li >= 0 {
			(*levels)[li].ReduceQty(o.QtyRemaining - newQty)
		}
		o.QtyRemaining = newQty
		resp.QtyRemaining = newQty
		resp.Result = market.Modified
		return resp
	}

	// Size increase (or unchanged) loses priority: cancel + re-add.
	trader, side, price := o.TraderID, o.Side, o.Price
	b.removeOrderLocked(idx)
	delete(b.orders, id)
	return b.addLimitLocked(id, trader, side, price, newQty)
}

// matchOrder walks the opposite side best-first, filling against each
// level's FIFO head until the taker is exhausted or the limit price no
// longer crosses. Returns the unfilled remainder and the trade count.
func (b *OrderBook) matchOrder(takerID market.OrderID, takerTrader market.TraderID, side market.Side, price market.Price, qty market.Qty, isMarket bool) (market.Qty, int) {
	opp := &b.asks
	if side == market.Sell {
		opp = &b.bids
	}

	remaining := qty
	trades := 0

	for remaining > 0 && len(*opp) > 0 {
		lvl := &(*opp)[0]

		if !isMarket {
			if side == market.Buy && lvl.Price > price {
				break
			}
			if side == market.Sell && lvl.Price < price {
				break
			}
		}

		for remaining > 0 && !lvl.Empty() {
			makerIdx := lvl.FrontIdx()
			maker := b.pool.Get(uint32(makerIdx))

			fill := remaining
			if maker.QtyRemaining < fill {
				fill = maker.QtyRemaining
			}

			trade := market.Trade{
				MakerOrderID:  maker.OrderID,
				TakerOrderID:  takerID,
				MakerTraderID: maker.TraderID,
				TakerTraderID: takerTrader,
				Price:         maker.Price,
				Qty:           fill,
				TakerSide:     side,
				Timestamp:     market.NowNanos(),
			}

			maker.QtyRemaining -= fill
			lvl.ReduceQty(fill)
			remaining -= fill

			b.emitTrade(trade)
			trades++
			b.totalTrades++
			b.totalVolume += uint64(fill)

			if maker.QtyRemaining <= 0 {
				delete(b.orders, maker.OrderID)
				lvl.Remove(b.pool, makerIdx)
				b.pool.Free(uint32(makerIdx))
			}
		}

		if lvl.Empty() {
			b.eraseLevel(opp, 0)
		}
	}

	return remaining, trades
}

// findOrCreateLevel lower-bound searches levels (bids compare descending,
// asks ascending) and inserts a fresh empty level when price is absent.
// Returns the level's index.
func (b *OrderBook) findOrCreateLevel(levels *[]PriceLevel, price market.Price, isBid bool) int {
	i := lowerBound(*levels, price, isBid)
	if i < len(*levels) && (*levels)[i].Price == price {
		return i
	}
	*levels = append(*levels, PriceLevel{})
	copy((*levels)[i+1:], (*levels)[i:])
	(*levels)[i] = newPriceLevel(price)
	return i
}

// findLevel returns the index of the level at price, or -1.
func (b *OrderBook) findLevel(levels []PriceLevel, price market.Price, isBid bool) int {
	i := lowerBound(levels, price, isBid)
	if i < len(levels) && levels[i].Price == price {
		return i
	}
	return -1
}

func lowerBound(levels []PriceLevel, price market.Price, isBid bool) int {
	return sort.Search(len(levels), func(i int) bool {
		if isBid {
			return levels[i].Price <= price
		}
		return levels[i].Price >= price
	})
}

func (b *OrderBook) eraseLevel(levels *[]PriceLevel, i int) {
	copy((*levels)[i:], (*levels)[i+1:])
	*levels = (*levels)[:len(*levels)-1]
}

func (b *OrderBook) removeOrderLocked(idx market.PoolIndex) {
	o := b.pool.Get(uint32(idx))
	levels := b.sideLevels(o.Side)

	if li := b.findLevel(*levels, o.Price, o.Side == market.Buy); li >= 0 {
		(*levels)[li].Remove(b.pool, idx)
		if (*levels)[li].Empty() {
			b.eraseLevel(levels, li)
		}
	}

	b.pool.Free(uint32(idx))
}

func (b *OrderBook) sideLevels(side market.Side) *[]PriceLevel {
	if side == market.Buy {
		return &b.bids
	}
	return &b.asks
}

func (b *OrderBook) emitTrade(t market.Trade) {
	if b.onTrade != nil {
		b.onTrade(t)
	}
}

// ---------------- Queries ---------------- //

// BestBid returns the highest resting bid price.
func (b *OrderBook) BestBid() (market.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.bids) == 0 {
		return 0, false
	}
	return b.bids[0].Price, true
}

// BestAsk returns the lowest resting ask price.
func (b *OrderBook) BestAsk() (market.Price, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.asks) == 0 {
		return 0, false
	}
	return b.asks[0].Price, true
}

// MidPrice returns (bid+ask)/2 when both sides are populated.
func (b *OrderBook) MidPrice() (float64, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return (float64(bid) + float64(ask)) / 2, true
}

// Spread returns bestAsk−bestBid when both sides are populated.
func (b *OrderBook) Spread() (int64, bool) {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return int64(ask) - int64(bid), true
}

// BestBidQty returns the aggregate quantity at the best bid.
func (b *OrderBook) BestBidQty() market.Qty {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.bids) == 0 {
		return 0
	}
	return b.bids[0].TotalQty
}

// BestAskQty returns the aggregate quantity at the best ask.
func (b *OrderBook) BestAskQty() market.Qty {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.asks) == 0 {
		return 0
	}
	return b.asks[0].TotalQty
}

// OrderCount returns the number of live orders.
func (b *OrderBook) OrderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.pool.Len())
}

// BidLevels returns the number of bid price levels.
func (b *OrderBook) BidLevels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bids)
}

// AskLevels returns the number of ask price levels.
func (b *OrderBook) AskLevels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.asks)
}

// TradeCount returns the total number of fills.
func (b *OrderBook) TradeCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalTrades
}

// TotalVolume returns the total filled quantity.
func (b *OrderBook) TotalVolume() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalVolume
}

// HasOrder reports whether id is live in the book.
func (b *OrderBook) HasOrder(id market.OrderID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.orders[id]
	return ok
}

// Clear empties the book and resets counters.
func (b *OrderBook) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pool.Clear()
	b.orders = make(map[market.OrderID]market.PoolIndex)
	b.bids = b.bids[:0]
	b.asks = b.asks[:0]
	b.totalTrades = 0
	b.totalVolume = 0
}

// LevelView is one row of a depth snapshot.
type LevelView struct {
	Price  market.Price
	Qty    market.Qty
	Orders uint32
}

// Snapshot is a compact immutable view for readers outside the engine
// goroutine.
type Snapshot struct {
	BestBid market.Price
	BestAsk market.Price
	HasBid  bool
	HasAsk  bool
	Bids    []LevelView
	Asks    []LevelView
}

// TakeSnapshot copies up to depth levels per side. Readers never touch
// the live book.
func (b *OrderBook) TakeSnapshot(depth int) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{}
	if len(b.bids) > 0 {
		snap.BestBid = b.bids[0].Price
		snap.HasBid = true
	}
	if len(b.asks) > 0 {
		snap.BestAsk = b.asks[0].Price
		snap.HasAsk = true
	}
	for i := 0; i < len(b.bids) && i < depth; i++ {
		l := &b.bids[i]
		snap.Bids = append(snap.Bids, LevelView{Price: l.Price, Qty: l.TotalQty, Orders: l.OrderCount})
	}
	for i := 0; i < len(b.asks) && i < depth; i++ {
		l := &b.asks[i]
		snap.Asks = append(snap.Asks, LevelView{Price: l.Price, Qty: l.TotalQty, Orders: l.OrderCount})
	}
	return snap
}
