// Package lob implements the cache-aware limit order book with
// price-time priority. Orders live in a fixed-capacity pool and are
// chained through per-level intrusive FIFO lists by pool index, never by
// pointer: the book references pool slots, the pool owns them.
package lob

import (
	"vega/domain/market"
)

// Order is the pool-resident representation of a resting order. PrevIdx
// and NextIdx form the doubly linked FIFO within one price level.
type Order struct {
	OrderID      market.OrderID
	TraderID     market.TraderID
	Side         market.Side
	Price        market.Price
	QtyRemaining market.Qty
	QtyOriginal  market.Qty
	Timestamp    int64
	PrevIdx      market.PoolIndex
	NextIdx      market.PoolIndex
}

// Filled reports whether nothing remains to trade.
func (o *Order) Filled() bool { return o.QtyRemaining <= 0 }

// QtyFilled returns the executed quantity.
func (o *Order) QtyFilled() market.Qty { return o.QtyOriginal - o.QtyRemaining }
