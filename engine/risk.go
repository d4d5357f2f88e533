package engine

import (
	"vega/domain/market"
)

// RiskConfig bounds what the risk gate lets through to the book.
type RiskConfig struct {
	MaxOrderValue int64        // max notional per order
	MaxPosition   int64        // max position size
	MaxOrderQty   market.Qty   // max quantity per order
	MaxPrice      market.Price // max valid price
	MinPrice      market.Price // min valid price
	CheckBalance  bool         // require sufficient balance on buys
}

// DefaultRiskConfig returns the simulator's standard limits.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxOrderValue: 1_000_000_000,
		MaxPosition:   1_000_000,
		MaxOrderQty:   100_000,
		MaxPrice:      1_000_000,
		MinPrice:      1,
		CheckBalance:  true,
	}
}

// RiskChecker validates incoming events before they reach the book. It
// never errors; every outcome is a RiskResult value.
type RiskChecker struct {
	cfg      RiskConfig
	accounts *Accounts
}

// NewRiskChecker builds a checker over the given account table (nil
// disables balance checks).
func NewRiskChecker(cfg RiskConfig, accounts *Accounts) *RiskChecker {
	return &RiskChecker{cfg: cfg, accounts: accounts}
}

// Config returns the current limits.
func (r *RiskChecker) Config() RiskConfig { return r.cfg }

// Check runs the pre-trade gates in order: price bounds (limit orders,
// and modifies carrying an explicit price — zero means unchanged and is
// exempt), quantity bounds, notional cap, and the buy-side balance
// check.
func (r *RiskChecker) Check(ev market.OrderEvent) market.RiskResult {
	if ev.Type == market.Cancel {
		return market.Passed
	}

	checkPrice := ev.Type == market.NewLimit || (ev.Type == market.Modify && ev.Price != 0)
	if checkPrice && (ev.Price < r.cfg.MinPrice || ev.Price > r.cfg.MaxPrice) {
		return market.InvalidPrice
	}

	if ev.Qty <= 0 || ev.Qty > r.cfg.MaxOrderQty {
		return market.InvalidQty
	}

	notional := int64(ev.Price) * int64(ev.Qty)
	if notional > r.cfg.MaxOrderValue {
		return market.ExceedsMaxOrderValue
	}

	if r.cfg.CheckBalance && r.accounts != nil && ev.Side == market.Buy && ev.Type != market.Modify {
		if !r.accounts.HasSufficientBalance(ev.TraderID, notional) {
			return market.InsufficientBalance
		}
	}

	return market.Passed
}
