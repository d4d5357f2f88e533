package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/domain/market"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)

	a := accs.GetOrCreate(1, 1000)
	require.NotNil(t, a)
	assert.Equal(t, int64(1000), a.Balance())

	b := accs.GetOrCreate(1, 9999)
	assert.Same(t, a, b, "second create must return the existing account")
	assert.Equal(t, int64(1000), b.Balance())
	assert.Equal(t, 1, accs.Len())
}

func TestGetOrCreateAtCapacity(t *testing.T) {
	accs := NewAccounts(2, DefaultStripeCount)
	require.NotNil(t, accs.GetOrCreate(1, 0))
	require.NotNil(t, accs.GetOrCreate(2, 0))
	assert.Nil(t, accs.GetOrCreate(3, 0))
}

func TestApplyTradeTakerBuys(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)
	maker := accs.GetOrCreate(1, 10_000)
	taker := accs.GetOrCreate(2, 10_000)

	accs.ApplyTrade(1, 2, market.Buy, 100, 10)

	assert.Equal(t, int64(10_000-1000), taker.Balance())
	assert.Equal(t, int64(10), taker.Position())
	assert.Equal(t, int64(10_000+1000), maker.Balance())
	assert.Equal(t, int64(-10), maker.Position())

	assert.Equal(t, uint64(1), maker.TradeCount())
	assert.Equal(t, uint64(10), maker.Volume())
	assert.Equal(t, uint64(1), taker.TradeCount())
}

func TestApplyTradeTakerSells(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)
	maker := accs.GetOrCreate(1, 0)
	taker := accs.GetOrCreate(2, 0)

	accs.ApplyTrade(1, 2, market.Sell, 100, 10)

	assert.Equal(t, int64(1000), taker.Balance())
	assert.Equal(t, int64(-10), taker.Position())
	assert.Equal(t, int64(-1000), maker.Balance())
	assert.Equal(t, int64(10), maker.Position())
}

// Balance and position deltas over any trade must cancel out pairwise.
func TestTradeConservation(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)
	accs.GetOrCreate(1, 5000)
	accs.GetOrCreate(2, 5000)

	accs.ApplyTrade(1, 2, market.Buy, 101, 7)
	accs.ApplyTrade(2, 1, market.Sell, 99, 3)

	assert.Equal(t, int64(0), accs.Position(1)+accs.Position(2))
	assert.Equal(t, int64(10_000), accs.Balance(1)+accs.Balance(2))
}

func TestHasSufficientBalance(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)
	accs.GetOrCreate(1, 500)

	assert.True(t, accs.HasSufficientBalance(1, 500))
	assert.False(t, accs.HasSufficientBalance(1, 501))
	assert.False(t, accs.HasSufficientBalance(99, 1), "unknown trader has no balance")
}

func TestAdjustBalance(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)
	accs.GetOrCreate(1, 100)

	assert.True(t, accs.AdjustBalance(1, -40))
	assert.Equal(t, int64(60), accs.Balance(1))
	assert.False(t, accs.AdjustBalance(2, 10))
}

func TestClearWipesAccounts(t *testing.T) {
	accs := NewAccounts(8, DefaultStripeCount)
	accs.GetOrCreate(1, 100)
	accs.GetOrCreate(2, 100)

	accs.Clear()
	assert.Equal(t, 0, accs.Len())
	assert.Nil(t, accs.Get(1))
}

func TestNonPowerOfTwoStripesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-power-of-two stripe count")
		}
	}()
	NewAccounts(8, 10)
}
