package replay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/domain/market"
)

func TestParseReaderGrammar(t *testing.T) {
	csv := strings.Join([]string{
		"type,order_id,trader_id,side,price,qty",
		"# resting liquidity",
		"L,1,0,B,10000,100",
		"L,2,1,S,10100,50",
		"",
		"N,3,2,S,,25",
		"M,4,3,B,,40", // legacy market row: M with a side
		"C,1,,,,",
		"M,2,,,,75", // modify: M without a side
		"X,2,,,10050,60",
	}, "\n")

	recs, err := ParseReader(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, recs, 7)

	assert.Equal(t, market.NewLimit, recs[0].Type)
	assert.Equal(t, market.OrderID(1), recs[0].OrderID)
	assert.Equal(t, market.TraderID(0), recs[0].TraderID)
	assert.Equal(t, market.Buy, recs[0].Side)
	assert.Equal(t, market.Price(10000), recs[0].Price)
	assert.Equal(t, market.Qty(100), recs[0].Qty)

	assert.Equal(t, market.Sell, recs[1].Side)

	assert.Equal(t, market.NewMarket, recs[2].Type)
	assert.Equal(t, market.Qty(25), recs[2].Qty)

	assert.Equal(t, market.NewMarket, recs[3].Type, "M with side column is a market order")
	assert.Equal(t, market.Buy, recs[3].Side)

	assert.Equal(t, market.Cancel, recs[4].Type)
	assert.Equal(t, market.OrderID(1), recs[4].OrderID)

	assert.Equal(t, market.Modify, recs[5].Type, "M without side column is a modify")
	assert.Equal(t, market.Qty(75), recs[5].Qty)
	assert.Equal(t, market.Price(0), recs[5].Price)

	assert.Equal(t, market.Modify, recs[6].Type)
	assert.Equal(t, market.Price(10050), recs[6].Price)
	assert.Equal(t, market.Qty(60), recs[6].Qty)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"unknown type", "Q,1,0,B,100,10"},
		{"bad side", "L,1,0,Z,100,10"},
		{"bad order id", "L,x,0,B,100,10"},
		{"bad price", "L,1,0,B,abc,10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tc.line))
			assert.Error(t, err)
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := ParseFile("does-not-exist.csv")
	assert.Error(t, err)
}

func TestRecordEventConversion(t *testing.T) {
	rec := Record{Type: market.NewLimit, OrderID: 5, TraderID: 2, Side: market.Sell, Price: 99, Qty: 7}
	ev := rec.Event()
	assert.Equal(t, market.NewLimit, ev.Type)
	assert.Equal(t, market.OrderID(5), ev.OrderID)
	assert.NotZero(t, ev.EnqueueTime)

	mod := Record{Type: market.Modify, OrderID: 5, Qty: 3}
	mev := mod.Event()
	assert.Equal(t, market.Modify, mev.Type)
	assert.Equal(t, market.Qty(3), mev.Qty)
}
