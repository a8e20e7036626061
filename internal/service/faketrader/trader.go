// Package faketrader generates a synthetic live trade feed for local
// development: a per-instrument random walk in price, published at a fixed
// cadence. Adapted from the teacher's faketrader package, generalised from
// "random trade volume" to "random-walk trade price".
package faketrader

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quantling/pricecore/internal/entity"
)

// TradeStore is the capability the trader needs to publish a trade.
type TradeStore interface {
	Store(ctx context.Context, trade entity.WireTrade) error
}

// Trader walks each instrument's price by a small random step every tick
// and publishes the result as a WireTrade.
type Trader struct {
	repo   TradeStore
	prices map[string]decimal.Decimal
	step   decimal.Decimal
	period time.Duration
}

// NewTrader builds a Trader for instruments, starting every one of them at
// openPrice.
func NewTrader(repo TradeStore, openPrice decimal.Decimal, instruments ...string) *Trader {
	prices := make(map[string]decimal.Decimal, len(instruments))
	for _, instrument := range instruments {
		prices[instrument] = openPrice
	}
	return &Trader{
		repo:   repo,
		prices: prices,
		step:   openPrice.Div(decimal.NewFromInt(200)),
		period: 100 * time.Millisecond,
	}
}

// Run publishes one trade per instrument every tick until ctx is
// cancelled.
func (t *Trader) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for instrument, price := range t.prices {
				price = t.walk(price)
				t.prices[instrument] = price

				trade := entity.WireTrade{
					ID:         uuid.New(),
					Instrument: instrument,
					Price:      price,
					Volume:     decimal.NewFromInt(int64(rand.Intn(200))),
					Time:       time.Now(),
				}

				if err := t.repo.Store(ctx, trade); err != nil {
					return err
				}
			}
		}
	}
}

func (t *Trader) walk(price decimal.Decimal) decimal.Decimal {
	direction := decimal.NewFromInt(int64(rand.Intn(3) - 1))
	next := price.Add(t.step.Mul(direction))
	if next.Sign() <= 0 {
		return price
	}
	return next
}
