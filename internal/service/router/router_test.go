package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantling/pricecore/config"
	"github.com/quantling/pricecore/internal/entity"
	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/pkg/ebus"
)

type fakeRestorer struct {
	last   entity.State
	stored []entity.State
}

func (f *fakeRestorer) LastState(context.Context) (entity.State, error) {
	return f.last, nil
}

func (f *fakeRestorer) Store(_ context.Context, state entity.State) error {
	f.stored = append(f.stored, state)
	return nil
}

func TestHandleTradeRejectsUnknownInstrument(t *testing.T) {
	rest := &fakeRestorer{last: entity.State{Instruments: map[string]entity.Checkpoint{}}}
	eBus := ebus.New()
	r := New(rest, eBus).AddInstrument("ETH", config.InstrumentConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = r.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)

	err := r.HandleTrade(ctx, event.TradeReceived{Instrument: "BTC", Trade: model.Trade{Price: 1, Time: 0}, Offset: 1})
	assert.Error(t, err)
}

func TestHandleTradeFeedsRegisteredInstrument(t *testing.T) {
	rest := &fakeRestorer{last: entity.State{Instruments: map[string]entity.Checkpoint{}}}
	eBus := ebus.New()
	r := New(rest, eBus).AddInstrument("ETH", config.InstrumentConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = r.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)

	err := r.HandleTrade(ctx, event.TradeReceived{
		Instrument: "ETH",
		Trade:      model.Trade{Price: 100, Time: model.Timestamp(model.NsPerSec)},
		Offset:     1,
	})
	require.NoError(t, err)

	state := r.State()
	cp, ok := state.Instruments["ETH"]
	require.True(t, ok)
	assert.Equal(t, int64(1), cp.Offset)
	assert.True(t, cp.HasLastTrade)
}
