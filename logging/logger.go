// Package logging provides the bounded async file logger used on the
// engine's hot path. Entries go into a fixed SPSC ring; a background
// goroutine flushes them to the file. The logging call never blocks —
// when the ring is full the entry is dropped and counted.
package logging

import (
	"bufio"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"vega/domain/market"
)

// MaxMessageSize bounds one log entry's message; oversize input is
// truncated.
const MaxMessageSize = 256

// DefaultRingSize is the entry ring capacity.
const DefaultRingSize = 4096

const defaultFlushInterval = 10 * time.Millisecond

type entry struct {
	ts  int64
	msg [MaxMessageSize]byte
	n   int
}

// AsyncLogger writes timestamped lines to a file from a background
// goroutine. Logf may be called from one goroutine (the engine); the
// flusher is the only consumer.
type AsyncLogger struct {
	ring []entry
	mask uint64

	head  uint64 // written only by the logging caller
	_pad1 [56]byte
	tail  uint64 // written only by the flusher
	_pad2 [56]byte

	file *os.File
	w    *bufio.Writer

	logged  atomic.Uint64
	dropped atomic.Uint64

	flushEvery time.Duration
	stop       chan struct{}
	done       chan struct{}
}

// Open creates (truncating) the log file and starts the flush goroutine.
func Open(path string) (*AsyncLogger, error) {
	return OpenSize(path, DefaultRingSize)
}

// OpenSize is Open with an explicit ring size, which must be a power of
// two.
func OpenSize(path string, ringSize uint64) (*AsyncLogger, error) {
	if ringSize == 0 || ringSize&(ringSize-1) != 0 {
		panic("logging.AsyncLogger ring size must be a power of two")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := &AsyncLogger{
		ring:       make([]entry, ringSize),
		mask:       ringSize - 1,
		file:       f,
		w:          bufio.NewWriter(f),
		flushEvery: defaultFlushInterval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go l.flushLoop()
	return l, nil
}

// Logf formats and enqueues one entry. Never blocks; drops when the ring
// is full.
func (l *AsyncLogger) Logf(format string, args ...any) {
	h := atomic.LoadUint64(&l.head)
	t := atomic.LoadUint64(&l.tail)
	if h-t == uint64(len(l.ring)) {
		l.dropped.Add(1)
		return
	}

	e := &l.ring[h&l.mask]
	e.ts = market.NowNanos()
	// Appendf spills to a fresh buffer when the message exceeds the
	// entry; copy truncates it back into the fixed slot.
	b := fmt.Appendf(e.msg[:0], format, args...)
	e.n = copy(e.msg[:], b)

	atomic.StoreUint64(&l.head, h+1)
	l.logged.Add(1)
}

// MessagesLogged returns the number of entries accepted into the ring.
func (l *AsyncLogger) MessagesLogged() uint64 { return l.logged.Load() }

// MessagesDropped returns the number of entries dropped on a full ring.
func (l *AsyncLogger) MessagesDropped() uint64 { return l.dropped.Load() }

// Close drains the ring, flushes and closes the file.
func (l *AsyncLogger) Close() error {
	close(l.stop)
	<-l.done
	return l.file.Close()
}

func (l *AsyncLogger) flushLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.drain()
		case <-l.stop:
			l.drain()
			l.w.Flush()
			return
		}
	}
}

func (l *AsyncLogger) drain() {
	h := atomic.LoadUint64(&l.head)
	t := atomic.LoadUint64(&l.tail)
	for ; t < h; t++ {
		e := &l.ring[t&l.mask]
		fmt.Fprintf(l.w, "%d %s\n", e.ts, e.msg[:e.n])
	}
	atomic.StoreUint64(&l.tail, t)
	l.w.Flush()
}
