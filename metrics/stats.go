package metrics

import (
	"fmt"
	"io"
	"sync/atomic"

	"vega/domain/market"
)

// Stats is the engine's counter block. The counters are lock-free
// atomics, cache-line padded so the engine goroutine and concurrent
// readers never contend on a line.
type Stats struct {
	TradeCount atomic.Uint64
	_pad0      [56]byte
	Volume     atomic.Uint64
	_pad1      [56]byte

	OrdersReceived  atomic.Uint64
	_pad2           [56]byte
	OrdersAccepted  atomic.Uint64
	_pad3           [56]byte
	OrdersCancelled atomic.Uint64
	_pad4           [56]byte
	OrdersModified  atomic.Uint64
	_pad5           [56]byte
	RejectedCount   atomic.Uint64
	_pad6           [56]byte
	FilledQty       atomic.Uint64
	_pad7           [56]byte

	// End-to-end latency (now − enqueue_time) and engine latency
	// (now − process_start).
	Latency       *LatencyHistogram
	EngineLatency *LatencyHistogram
}

// NewStats builds a Stats block with default-sized histograms.
func NewStats() *Stats {
	return &Stats{
		Latency:       NewLatencyHistogram(DefaultSampleSize),
		EngineLatency: NewLatencyHistogram(DefaultSampleSize),
	}
}

// Reset zeroes every counter and clears both histograms.
func (s *Stats) Reset() {
	s.TradeCount.Store(0)
	s.Volume.Store(0)
	s.OrdersReceived.Store(0)
	s.OrdersAccepted.Store(0)
	s.OrdersCancelled.Store(0)
	s.OrdersModified.Store(0)
	s.RejectedCount.Store(0)
	s.FilledQty.Store(0)
	s.Latency.Clear()
	s.EngineLatency.Clear()
}

// Snapshot is a non-atomic copy for reporting.
type Snapshot struct {
	TradeCount      uint64
	Volume          uint64
	OrdersReceived  uint64
	OrdersAccepted  uint64
	OrdersCancelled uint64
	OrdersModified  uint64
	RejectedCount   uint64
	FilledQty       uint64
	Latency         LatencyStats
	Timestamp       int64
}

// Capture reads every counter and computes latency stats.
func (s *Stats) Capture() Snapshot {
	return Snapshot{
		TradeCount:      s.TradeCount.Load(),
		Volume:          s.Volume.Load(),
		OrdersReceived:  s.OrdersReceived.Load(),
		OrdersAccepted:  s.OrdersAccepted.Load(),
		OrdersCancelled: s.OrdersCancelled.Load(),
		OrdersModified:  s.OrdersModified.Load(),
		RejectedCount:   s.RejectedCount.Load(),
		FilledQty:       s.FilledQty.Load(),
		Latency:         s.Latency.ComputeStats(),
		Timestamp:       market.NowNanos(),
	}
}

// Fprint writes the counter summary followed by the latency summary.
func (s Snapshot) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\n=== Engine Statistics ===\n")
	fmt.Fprintf(w, "  Trades:       %d\n", s.TradeCount)
	fmt.Fprintf(w, "  Volume:       %d\n", s.Volume)
	fmt.Fprintf(w, "  Orders Recv:  %d\n", s.OrdersReceived)
	fmt.Fprintf(w, "  Accepted:     %d\n", s.OrdersAccepted)
	fmt.Fprintf(w, "  Cancelled:    %d\n", s.OrdersCancelled)
	fmt.Fprintf(w, "  Modified:     %d\n", s.OrdersModified)
	fmt.Fprintf(w, "  Rejected:     %d\n", s.RejectedCount)
	fmt.Fprintf(w, "  Filled Qty:   %d\n", s.FilledQty)
	fmt.Fprintf(w, "=========================\n")
	s.Latency.Fprint(w)
}
