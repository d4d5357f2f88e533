// Package memory provides the fixed-capacity object pool backing the
// order book. Slots are addressed by index, not pointer, and freed slots
// are chained through an intrusive freelist, so there is no heap churn
// after construction.
//
// The memory package is dependency-free. It is not safe for concurrent
// use; the engine goroutine is its only owner.
package memory
