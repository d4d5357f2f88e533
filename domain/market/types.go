package market

import "time"

// Price is a signed tick count.
type Price int64

// Qty is a signed unit count.
type Qty int64

// OrderID uniquely identifies an order across the whole run.
type OrderID uint64

// TraderID identifies a trading account.
type TraderID uint32

// PoolIndex is a handle into the order pool.
type PoolIndex uint32

const (
	InvalidPoolIndex PoolIndex = ^PoolIndex(0)
	InvalidOrderID   OrderID   = ^OrderID(0)
	InvalidTraderID  TraderID  = ^TraderID(0)
)

// Side is the direction of an order.
type Side uint8

const (
	Buy Side = iota
	Sell
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// OrderType tags an OrderEvent.
type OrderType uint8

const (
	NewLimit OrderType = iota
	NewMarket
	Cancel
	Modify
)

func (t OrderType) String() string {
	switch t {
	case NewLimit:
		return "NewLimit"
	case NewMarket:
		return "NewMarket"
	case Cancel:
		return "Cancel"
	case Modify:
		return "Modify"
	}
	return "Unknown"
}

// OrderResult is the outcome of a book operation.
type OrderResult uint8

const (
	Accepted OrderResult = iota
	PartiallyFilled
	FullyFilled
	Cancelled
	Modified
	Rejected
	NotFound
)

func (r OrderResult) String() string {
	switch r {
	case Accepted:
		return "Accepted"
	case PartiallyFilled:
		return "PartiallyFilled"
	case FullyFilled:
		return "FullyFilled"
	case Cancelled:
		return "Cancelled"
	case Modified:
		return "Modified"
	case Rejected:
		return "Rejected"
	case NotFound:
		return "NotFound"
	}
	return "Unknown"
}

// RiskResult is the outcome of a pre-trade risk check.
type RiskResult uint8

const (
	Passed RiskResult = iota
	InvalidPrice
	InvalidQty
	ExceedsMaxOrderValue
	ExceedsMaxPosition
	InsufficientBalance
	UnknownTrader
)

func (r RiskResult) String() string {
	switch r {
	case Passed:
		return "Passed"
	case InvalidPrice:
		return "InvalidPrice"
	case InvalidQty:
		return "InvalidQty"
	case ExceedsMaxOrderValue:
		return "ExceedsMaxOrderValue"
	case ExceedsMaxPosition:
		return "ExceedsMaxPosition"
	case InsufficientBalance:
		return "InsufficientBalance"
	case UnknownTrader:
		return "UnknownTrader"
	}
	return "Unknown"
}

// clockBase pairs a wall-clock reading with Go's monotonic clock reading.
var clockBase = time.Now()

// NowNanos returns a monotonic time in nanoseconds on the Unix-epoch
// scale: the Unix time at process start plus the monotonic time elapsed
// since. All timestamps and latency samples in the engine use this clock.
func NowNanos() int64 {
	return clockBase.UnixNano() + int64(time.Since(clockBase))
}
