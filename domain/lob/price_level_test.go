package lob

import (
	"testing"

	"vega/domain/market"
	"vega/infra/memory"
)

func allocOrder(t *testing.T, pool *memory.Pool[Order], id market.OrderID, qty market.Qty) market.PoolIndex {
	t.Helper()
	idx, o := pool.Alloc()
	if o == nil {
		t.Fatal("pool exhausted in test setup")
	}
	*o = Order{
		OrderID:      id,
		Price:        100,
		QtyRemaining: qty,
		QtyOriginal:  qty,
		PrevIdx:      market.InvalidPoolIndex,
		NextIdx:      market.InvalidPoolIndex,
	}
	return market.PoolIndex(idx)
}

func levelSumQty(pool *memory.Pool[Order], l *PriceLevel) market.Qty {
	sum := market.Qty(0)
	for idx := l.HeadIdx; idx != market.InvalidPoolIndex; idx = pool.Get(uint32(idx)).NextIdx {
		sum += pool.Get(uint32(idx)).QtyRemaining
	}
	return sum
}

func TestPushBackPreservesArrivalOrder(t *testing.T) {
	pool := memory.NewPool[Order](8)
	l := newPriceLevel(100)

	a := allocOrder(t, pool, 1, 10)
	b := allocOrder(t, pool, 2, 20)
	c := allocOrder(t, pool, 3, 30)
	l.PushBack(pool, a)
	l.PushBack(pool, b)
	l.PushBack(pool, c)

	if l.FrontIdx() != a || l.TailIdx != c {
		t.Error("head and tail should reflect arrival order")
	}
	if l.OrderCount != 3 || l.TotalQty != 60 {
		t.Errorf("count=%d total=%d, want 3/60", l.OrderCount, l.TotalQty)
	}
	if got := levelSumQty(pool, &l); got != l.TotalQty {
		t.Errorf("linked qty %d != TotalQty %d", got, l.TotalQty)
	}
}

func TestRemoveMiddleEndpoints(t *testing.T) {
	pool := memory.NewPool[Order](8)
	l := newPriceLevel(100)

	a := allocOrder(t, pool, 1, 10)
	b := allocOrder(t, pool, 2, 20)
	c := allocOrder(t, pool, 3, 30)
	l.PushBack(pool, a)
	l.PushBack(pool, b)
	l.PushBack(pool, c)

	l.Remove(pool, b) // middle
	if l.FrontIdx() != a || l.TailIdx != c || l.OrderCount != 2 || l.TotalQty != 40 {
		t.Error("middle removal broke the chain")
	}
	if o := pool.Get(uint32(b)); o.PrevIdx != market.InvalidPoolIndex || o.NextIdx != market.InvalidPoolIndex {
		t.Error("removed order's links should be cleared")
	}

	l.Remove(pool, a) // head
	if l.FrontIdx() != c || l.TailIdx != c {
		t.Error("head removal should promote the successor")
	}

	l.Remove(pool, c) // last
	if !l.Empty() || l.FrontIdx() != market.InvalidPoolIndex || l.TailIdx != market.InvalidPoolIndex {
		t.Error("empty level should have invalid endpoints")
	}
	if l.TotalQty != 0 {
		t.Errorf("TotalQty = %d after emptying", l.TotalQty)
	}
}

func TestReduceQtyKeepsLinks(t *testing.T) {
	pool := memory.NewPool[Order](4)
	l := newPriceLevel(100)
	a := allocOrder(t, pool, 1, 10)
	l.PushBack(pool, a)

	pool.Get(uint32(a)).QtyRemaining -= 4
	l.ReduceQty(4)

	if l.TotalQty != 6 || l.OrderCount != 1 || l.FrontIdx() != a {
		t.Error("partial fill should only adjust the aggregate")
	}
}
