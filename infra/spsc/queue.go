// Package spsc implements the bounded single-producer/single-consumer
// event queue feeding the matching engine.
//
// The ring indices are cache-line padded so the producer and consumer
// never write the same line. Two counting semaphores, realised as
// buffered channels of struct{}, serialise visibility: freeSlots starts
// at capacity, filledSlots at zero. The producer acquires a free slot,
// stores the element, publishes head+1 with a release store and releases
// a filled slot; the consumer mirrors it. Exactly one goroutine may call
// the producer operations and exactly one the consumer operations.
package spsc

import (
	"sync/atomic"
	"time"
)

// Queue is a bounded SPSC channel with blocking, non-blocking and timed
// push/pop variants.
type Queue[T any] struct {
	buf  []T
	mask uint64

	head  uint64 // written only by the producer
	_pad1 [56]byte
	tail  uint64 // written only by the consumer
	_pad2 [56]byte

	freeSlots   chan struct{}
	filledSlots chan struct{}
}

// New builds a queue of the given capacity, which must be a power of two.
func New[T any](capacity uint64) *Queue[T] {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("spsc.Queue capacity must be a power of two")
	}
	q := &Queue[T]{
		buf:         make([]T, capacity),
		mask:        capacity - 1,
		freeSlots:   make(chan struct{}, capacity),
		filledSlots: make(chan struct{}, capacity),
	}
	for i := uint64(0); i < capacity; i++ {
		q.freeSlots <- struct{}{}
	}
	return q
}

// Push blocks until a slot is free, then enqueues v.
func (q *Queue[T]) Push(v T) {
	<-q.freeSlots
	q.store(v)
	q.filledSlots <- struct{}{}
}

// TryPush enqueues v if a slot is free. It has no side effects on failure.
func (q *Queue[T]) TryPush(v T) bool {
	select {
	case <-q.freeSlots:
	default:
		return false
	}
	q.store(v)
	q.filledSlots <- struct{}{}
	return true
}

// TryPushFor enqueues v, waiting up to d for a free slot.
func (q *Queue[T]) TryPushFor(v T, d time.Duration) bool {
	select {
	case <-q.freeSlots:
	default:
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-q.freeSlots:
		case <-t.C:
			return false
		}
	}
	q.store(v)
	q.filledSlots <- struct{}{}
	return true
}

// Pop blocks until an element is available and returns it.
func (q *Queue[T]) Pop() T {
	<-q.filledSlots
	v := q.load()
	q.freeSlots <- struct{}{}
	return v
}

// TryPop dequeues an element if one is available.
func (q *Queue[T]) TryPop() (T, bool) {
	select {
	case <-q.filledSlots:
	default:
		var zero T
		return zero, false
	}
	v := q.load()
	q.freeSlots <- struct{}{}
	return v, true
}

// TryPopFor dequeues an element, waiting up to d for one to arrive.
func (q *Queue[T]) TryPopFor(d time.Duration) (T, bool) {
	select {
	case <-q.filledSlots:
	default:
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-q.filledSlots:
		case <-t.C:
			var zero T
			return zero, false
		}
	}
	v := q.load()
	q.freeSlots <- struct{}{}
	return v, true
}

// SizeApprox returns head−tail under acquire loads. Exact only when both
// sides are quiescent.
func (q *Queue[T]) SizeApprox() uint64 {
	h := atomic.LoadUint64(&q.head)
	t := atomic.LoadUint64(&q.tail)
	return h - t
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() uint64 { return uint64(len(q.buf)) }

func (q *Queue[T]) store(v T) {
	h := atomic.LoadUint64(&q.head)
	q.buf[h&q.mask] = v
	atomic.StoreUint64(&q.head, h+1)
}

func (q *Queue[T]) load() T {
	t := atomic.LoadUint64(&q.tail)
	v := q.buf[t&q.mask]
	var zero T
	q.buf[t&q.mask] = zero
	atomic.StoreUint64(&q.tail, t+1)
	return v
}
