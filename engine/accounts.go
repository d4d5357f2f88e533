// Package engine wires the consumer side of the simulator: the account
// table, the pre-trade risk gate, the matching loop draining the SPSC
// queue, and the synthetic order producer.
package engine

import (
	"sync"
	"sync/atomic"

	"vega/domain/market"
)

// DefaultStripeCount is the number of account stripe locks.
const DefaultStripeCount = 16

// Account is one trader's state. Balance and position are atomics so
// other goroutines can read totals while the engine applies trades.
type Account struct {
	TraderID market.TraderID

	balance    atomic.Int64
	position   atomic.Int64
	tradeCount atomic.Uint64
	volume     atomic.Uint64
}

// Balance returns the current balance.
func (a *Account) Balance() int64 { return a.balance.Load() }

// Position returns the net position, positive = long.
func (a *Account) Position() int64 { return a.position.Load() }

// TradeCount returns the number of fills touching this account.
func (a *Account) TradeCount() uint64 { return a.tradeCount.Load() }

// Volume returns the total filled quantity touching this account.
func (a *Account) Volume() uint64 { return a.volume.Load() }

// Accounts maps trader → account with striped creation locks. The live
// account list is published through an atomic pointer: lookups scan it
// without locking, creation copies, appends and republishes under the
// trader's stripe lock. The engine goroutine is the only creator.
type Accounts struct {
	list       atomic.Pointer[[]*Account]
	stripes    []sync.Mutex
	maxTraders int
}

// NewAccounts builds an account table bounded to maxTraders entries.
// stripeCount must be a power of two.
func NewAccounts(maxTraders, stripeCount int) *Accounts {
	if stripeCount <= 0 || stripeCount&(stripeCount-1) != 0 {
		panic("engine.Accounts stripe count must be a power of two")
	}
	a := &Accounts{
		stripes:    make([]sync.Mutex, stripeCount),
		maxTraders: maxTraders,
	}
	empty := make([]*Account, 0, maxTraders)
	a.list.Store(&empty)
	return a
}

func (a *Accounts) stripe(id market.TraderID) *sync.Mutex {
	return &a.stripes[int(id)&(len(a.stripes)-1)]
}

// Get returns the account for id, or nil.
func (a *Accounts) Get(id market.TraderID) *Account {
	for _, acc := range *a.list.Load() {
		if acc.TraderID == id {
			return acc
		}
	}
	return nil
}

// GetOrCreate returns the existing account or creates one with the given
// starting balance. The fast path is a lock-free scan; creation takes
// the stripe lock, rechecks and appends. Returns nil at capacity.
func (a *Accounts) GetOrCreate(id market.TraderID, initialBalance int64) *Account {
	if acc := a.Get(id); acc != nil {
		return acc
	}

	mu := a.stripe(id)
	mu.Lock()
	defer mu.Unlock()

	cur := *a.list.Load()
	for _, acc := range cur {
		if acc.TraderID == id {
			return acc
		}
	}
	if len(cur) >= a.maxTraders {
		return nil
	}

	acc := &Account{TraderID: id}
	acc.balance.Store(initialBalance)

	next := make([]*Account, len(cur), cap(cur))
	copy(next, cur)
	next = append(next, acc)
	a.list.Store(&next)
	return acc
}

// ApplyTrade updates both parties of one fill: four atomic updates with
// signs chosen by the taker's side, plus trade count and volume on each.
func (a *Accounts) ApplyTrade(makerID, takerID market.TraderID, takerSide market.Side, price market.Price, qty market.Qty) {
	maker := a.Get(makerID)
	taker := a.Get(takerID)
	if maker == nil || taker == nil {
		return
	}

	notional := int64(price) * int64(qty)
	units := int64(qty)

	if takerSide == market.Buy {
		taker.balance.Add(-notional)
		taker.position.Add(units)
		maker.balance.Add(notional)
		maker.position.Add(-units)
	} else {
		taker.balance.Add(notional)
		taker.position.Add(-units)
		maker.balance.Add(-notional)
		maker.position.Add(units)
	}

	maker.tradeCount.Add(1)
	maker.volume.Add(uint64(qty))
	taker.tradeCount.Add(1)
	taker.volume.Add(uint64(qty))
}

// AdjustBalance adds amount (negative for withdrawal) to the trader's
// balance. False if the account does not exist.
func (a *Accounts) AdjustBalance(id market.TraderID, amount int64) bool {
	acc := a.Get(id)
	if acc == nil {
		return false
	}
	acc.balance.Add(amount)
	return true
}

// HasSufficientBalance reports whether the trader's balance covers
// required.
func (a *Accounts) HasSufficientBalance(id market.TraderID, required int64) bool {
	acc := a.Get(id)
	return acc != nil && acc.Balance() >= required
}

// Balance returns the trader's balance, zero for unknown traders.
func (a *Accounts) Balance(id market.TraderID) int64 {
	if acc := a.Get(id); acc != nil {
		return acc.Balance()
	}
	return 0
}

// Position returns the trader's position, zero for unknown traders.
func (a *Accounts) Position(id market.TraderID) int64 {
	if acc := a.Get(id); acc != nil {
		return acc.Position()
	}
	return 0
}

// Len returns the number of accounts.
func (a *Accounts) Len() int { return len(*a.list.Load()) }

// Clear wipes the table. Stripe locks are taken in order so no creation
// can interleave.
func (a *Accounts) Clear() {
	for i := range a.stripes {
		a.stripes[i].Lock()
	}
	empty := make([]*Account, 0, a.maxTraders)
	a.list.Store(&empty)
	for i := len(a.stripes) - 1; i >= 0; i-- {
		a.stripes[i].Unlock()
	}
}
