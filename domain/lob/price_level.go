package lob

import (
	"vega/domain/market"
	"vega/infra/memory"
)

// PriceLevel is one price bucket: an intrusive FIFO of pool indices with
// aggregate quantity. All operations are O(1).
type PriceLevel struct {
	Price      market.Price
	TotalQty   market.Qty
	OrderCount uint32
	HeadIdx    market.PoolIndex
	TailIdx    market.PoolIndex
}

func newPriceLevel(p market.Price) PriceLevel {
	return PriceLevel{
		Price:   p,
		HeadIdx: market.InvalidPoolIndex,
		TailIdx: market.InvalidPoolIndex,
	}
}

// Empty reports whether the level holds no orders.
func (l *PriceLevel) Empty() bool { return l.OrderCount == 0 }

// PushBack appends the order at idx to the tail of the FIFO.
func (l *PriceLevel) PushBack(pool *memory.Pool[Order], idx market.PoolIndex) {
	o := pool.Get(uint32(idx))

	o.PrevIdx = l.TailIdx
	o.NextIdx = market.InvalidPoolIndex

	if l.TailIdx != market.InvalidPoolIndex {
		pool.Get(uint32(l.TailIdx)).NextIdx = idx
	} else {
		l.HeadIdx = idx
	}

	l.TailIdx = idx
	l.TotalQty += o.QtyRemaining
	l.OrderCount++
}

// Remove unlinks the order at idx, patching its neighbours or the level
// endpoints, and clears the order's links.
func (l *PriceLevel) Remove(pool *memory.Pool[Order], idx market.PoolIndex) {
	o := pool.Get(uint32(idx))

	if o.PrevIdx != market.InvalidPoolIndex {
		pool.Get(uint32(o.PrevIdx)).NextIdx = o.NextIdx
	} else {
		l.HeadIdx = o.NextIdx
	}

	if o.NextIdx != market.InvalidPoolIndex {
		pool.Get(uint32(o.NextIdx)).PrevIdx = o.PrevIdx
	} else {
		l.TailIdx = o.PrevIdx
	}

	l.TotalQty -= o.QtyRemaining
	l.OrderCount--

	o.PrevIdx = market.InvalidPoolIndex
	o.NextIdx = market.InvalidPoolIndex
}

// FrontIdx returns the oldest order's index, or InvalidPoolIndex.
func (l *PriceLevel) FrontIdx() market.PoolIndex { return l.HeadIdx }

// ReduceQty subtracts a partial fill from the aggregate without relinking.
func (l *PriceLevel) ReduceQty(filled market.Qty) { l.TotalQty -= filled }
