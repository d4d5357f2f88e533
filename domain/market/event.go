package market

// OrderEvent is the element type of the engine's input queue. For Cancel and
// Modify, TraderID and Side are unused; a Modify carries the new quantity in
// Qty and the new price in Price (zero means price unchanged).
type OrderEvent struct {
	Type        OrderType
	OrderID     OrderID
	TraderID    TraderID
	Side        Side
	Price       Price
	Qty         Qty
	EnqueueTime int64
}

// NewLimitEvent builds a NewLimit event stamped with the current time.
func NewLimitEvent(id OrderID, trader TraderID, side Side, price Price, qty Qty) OrderEvent {
	return OrderEvent{
		Type:        NewLimit,
		OrderID:     id,
		TraderID:    trader,
		Side:        side,
		Price:       price,
		Qty:         qty,
		EnqueueTime: NowNanos(),
	}
}

// NewMarketEvent builds a NewMarket event stamped with the current time.
func NewMarketEvent(id OrderID, trader TraderID, side Side, qty Qty) OrderEvent {
	return OrderEvent{
		Type:        NewMarket,
		OrderID:     id,
		TraderID:    trader,
		Side:        side,
		Qty:         qty,
		EnqueueTime: NowNanos(),
	}
}

// CancelEvent builds a Cancel event for an existing order.
func CancelEvent(id OrderID) OrderEvent {
	return OrderEvent{
		Type:        Cancel,
		OrderID:     id,
		TraderID:    InvalidTraderID,
		EnqueueTime: NowNanos(),
	}
}

// ModifyEvent builds a Modify event. newPrice of zero leaves the price
// unchanged.
func ModifyEvent(id OrderID, newQty Qty, newPrice Price) OrderEvent {
	return OrderEvent{
		Type:        Modify,
		OrderID:     id,
		TraderID:    InvalidTraderID,
		Price:       newPrice,
		Qty:         newQty,
		EnqueueTime: NowNanos(),
	}
}

// Trade is a fill report. Price is always the maker's resting price.
type Trade struct {
	MakerOrderID  OrderID
	TakerOrderID  OrderID
	MakerTraderID TraderID
	TakerTraderID TraderID
	Price         Price
	Qty           Qty
	TakerSide     Side
	Timestamp     int64
}

// OrderResponse reports the outcome of a single book operation.
type OrderResponse struct {
	Result       OrderResult
	OrderID      OrderID
	QtyFilled    Qty
	QtyRemaining Qty
	TradeCount   int
}

// Success reports whether the operation changed or could have changed book
// state. Rejected and NotFound are the failure outcomes.
func (r OrderResponse) Success() bool {
	return r.Result != Rejected && r.Result != NotFound
}
