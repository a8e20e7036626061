package faketrader

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantling/pricecore/internal/entity"
)

type recordingStore struct {
	trades []entity.WireTrade
}

func (r *recordingStore) Store(_ context.Context, trade entity.WireTrade) error {
	r.trades = append(r.trades, trade)
	return nil
}

func TestWalkNeverProducesNonPositivePrice(t *testing.T) {
	trader := NewTrader(&recordingStore{}, decimal.NewFromInt(100), "ETH")

	price := decimal.NewFromInt(100)
	for i := 0; i < 10000; i++ {
		price = trader.walk(price)
		require.True(t, price.Sign() > 0, "walk produced a non-positive price: %s", price)
	}
}

func TestRunPublishesOneTradePerInstrumentPerTick(t *testing.T) {
	store := &recordingStore{}
	trader := NewTrader(store, decimal.NewFromInt(100), "ETH", "BTC")
	trader.period = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Millisecond)
	defer cancel()

	_ = trader.Run(ctx)

	assert.GreaterOrEqual(t, len(store.trades), 2)
	seen := map[string]bool{}
	for _, trade := range store.trades {
		seen[trade.Instrument] = true
	}
	assert.True(t, seen["ETH"])
	assert.True(t, seen["BTC"])
}
