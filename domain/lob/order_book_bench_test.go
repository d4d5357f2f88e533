package lob

import (
	"testing"

	"vega/domain/market"
)

// ---------------- Basic Benchmarks ---------------- //

func BenchmarkAddLimitNoCross(b *testing.B) {
	book := NewOrderBook(uint32(max(b.N, 1<<20)), 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book.AddLimit(market.OrderID(i+1), 0, market.Buy, 100, 10)
	}
}

func BenchmarkAddCancel(b *testing.B) {
	book := NewOrderBook(1<<20, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := market.OrderID(i + 1)
		book.AddLimit(id, 0, market.Buy, 100, 10)
		book.Cancel(id)
	}
}

func BenchmarkCrossingFlow(b *testing.B) {
	book := NewOrderBook(1<<20, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := market.OrderID(2*i + 1)
		book.AddLimit(id, 0, market.Sell, 100, 10)
		book.AddLimit(id+1, 1, market.Buy, 100, 10)
	}
}

func BenchmarkTakeSnapshot(b *testing.B) {
	book := NewOrderBook(1<<20, 1024)
	for i := 0; i < 50_000; i++ {
		if i%2 == 0 {
			book.AddLimit(market.OrderID(i+1), 0, market.Buy, market.Price(90-i%50), 10)
		} else {
			book.AddLimit(market.OrderID(i+1), 0, market.Sell, market.Price(110+i%50), 10)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap := book.TakeSnapshot(16)
		if !snap.HasBid || !snap.HasAsk {
			b.Fatal("snapshot missed a side")
		}
	}
}
