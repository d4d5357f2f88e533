package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramPercentiles(t *testing.T) {
	h := NewLatencyHistogram(1000)
	for i := int64(1); i <= 100; i++ {
		h.Record(i)
	}

	stats := h.ComputeStats()
	require.Equal(t, uint64(100), stats.Count)
	assert.Equal(t, int64(1), stats.MinNs)
	assert.Equal(t, int64(100), stats.MaxNs)
	assert.InDelta(t, 50.5, stats.MeanNs, 1e-9)

	// Linear interpolation between adjacent order statistics.
	assert.InDelta(t, 50.5, stats.P50Ns, 1e-9)
	assert.InDelta(t, 90.1, stats.P90Ns, 1e-9)
	assert.InDelta(t, 95.05, stats.P95Ns, 1e-9)
	assert.InDelta(t, 99.01, stats.P99Ns, 1e-9)
	assert.InDelta(t, 99.901, stats.P999Ns, 1e-6)
}

func TestHistogramEmpty(t *testing.T) {
	h := NewLatencyHistogram(16)
	stats := h.ComputeStats()
	assert.Equal(t, uint64(0), stats.Count)
	assert.Equal(t, 0.0, stats.MeanNs)
}

func TestHistogramSingleSample(t *testing.T) {
	h := NewLatencyHistogram(16)
	h.Record(42)

	stats := h.ComputeStats()
	assert.Equal(t, uint64(1), stats.Count)
	assert.Equal(t, 42.0, stats.P50Ns)
	assert.Equal(t, 42.0, stats.P999Ns)
	assert.Equal(t, int64(42), stats.MinNs)
	assert.Equal(t, int64(42), stats.MaxNs)
}

func TestHistogramRingOverwrite(t *testing.T) {
	h := NewLatencyHistogram(4)
	for i := int64(1); i <= 10; i++ {
		h.Record(i)
	}

	stats := h.ComputeStats()
	// Count keeps growing; the window holds the last 4 samples (7..10).
	assert.Equal(t, uint64(10), stats.Count)
	assert.InDelta(t, 8.5, stats.P50Ns, 1e-9) // p50 of {7,8,9,10}
	// Min/max span all recorded samples, not just the window.
	assert.Equal(t, int64(1), stats.MinNs)
	assert.Equal(t, int64(10), stats.MaxNs)
}

func TestHistogramClear(t *testing.T) {
	h := NewLatencyHistogram(16)
	h.Record(5)
	h.Clear()
	assert.Equal(t, uint64(0), h.Count())
}

func TestStatsCaptureAndReset(t *testing.T) {
	s := NewStats()
	s.TradeCount.Add(3)
	s.Volume.Add(30)
	s.RejectedCount.Add(1)
	s.Latency.Record(100)

	snap := s.Capture()
	assert.Equal(t, uint64(3), snap.TradeCount)
	assert.Equal(t, uint64(30), snap.Volume)
	assert.Equal(t, uint64(1), snap.RejectedCount)
	assert.Equal(t, uint64(1), snap.Latency.Count)

	s.Reset()
	snap = s.Capture()
	assert.Equal(t, uint64(0), snap.TradeCount)
	assert.Equal(t, uint64(0), snap.Latency.Count)
}
