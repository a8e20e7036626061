package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantling/pricecore/config"
	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/internal/model"
)

func TestInstrumentSkipsOffsetAtOrBehindCheckpoint(t *testing.T) {
	inst := newInstrument("ETH", config.InstrumentConfig{})

	skipped := inst.addTrade(event.TradeReceived{
		Instrument: "ETH",
		Trade:      model.Trade{Price: 100, Time: 0},
		Offset:     5,
	})
	assert.False(t, skipped)

	skipped = inst.addTrade(event.TradeReceived{
		Instrument: "ETH",
		Trade:      model.Trade{Price: 110, Time: model.Timestamp(model.NsPerSec)},
		Offset:     5,
	})
	assert.True(t, skipped, "offset at the last checkpointed offset must be skipped")

	skipped = inst.addTrade(event.TradeReceived{
		Instrument: "ETH",
		Trade:      model.Trade{Price: 120, Time: model.Timestamp(2 * model.NsPerSec)},
		Offset:     3,
	})
	assert.True(t, skipped, "offset behind the last checkpointed offset must be skipped")
}

func TestInstrumentCheckpointRestoreRoundTrips(t *testing.T) {
	inst := newInstrument("ETH", config.InstrumentConfig{})
	inst.addTrade(event.TradeReceived{
		Instrument: "ETH",
		Trade:      model.Trade{Price: 100, Time: model.Timestamp(model.NsPerSec)},
		Offset:     7,
	})

	cp := inst.checkpoint()
	assert.Equal(t, int64(7), cp.Offset)
	assert.True(t, cp.HasLastTrade)

	fresh := newInstrument("ETH", config.InstrumentConfig{})
	fresh.restore(cp)

	est, ok := fresh.eval(model.Timestamp(model.NsPerSec))
	assert.True(t, ok)
	assert.Equal(t, model.PriceVal(100), est.Price)

	skipped := fresh.addTrade(event.TradeReceived{
		Instrument: "ETH",
		Trade:      model.Trade{Price: 200, Time: model.Timestamp(2 * model.NsPerSec)},
		Offset:     7,
	})
	assert.True(t, skipped, "restore must carry the checkpointed offset forward")
}
