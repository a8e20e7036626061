// Package event defines the values that flow over pkg/ebus between the
// live-feed services: decoded trades in, price updates and lifecycle
// notices out.
package event

import (
	"github.com/quantling/pricecore/internal/model"
)

// TradeReceived is emitted by the Kafka consumer for every decoded
// WireTrade, with its wire price already converted to the core's
// model.Trade by the instrument's configured tick scale.
type TradeReceived struct {
	Instrument string
	Trade      model.Trade
	Offset     int64
}

// TradeSkipped is emitted by the consumer instead of TradeReceived when
// decoding/conversion fails, and by the router (after the TradeReceived)
// when the trade's offset is at or behind the last one its instrument has
// seen — the live-feed analogue of the replay
// driver's fatal monotonicity precondition, except here it degrades rather
// than halting the process.
type TradeSkipped struct {
	Instrument string
	Offset     int64
	Reason     string
}

// PriceUpdated is emitted by the router on every eval tick. Estimate is the
// zero value with Present == false when the price estimator has nothing to
// report yet (before the first trade, or once it has gone stale).
type PriceUpdated struct {
	Instrument string
	Estimate   model.PriceEstimate
	Present    bool
}

// StateSaved is emitted after the checkpoint repository durably stores the
// current offsets.
type StateSaved struct {
	Offsets map[string]int64
}

// StateRestored is emitted once at startup after the checkpoint repository
// has finished recovering prior state.
type StateRestored struct {
	Offsets map[string]int64
}

// Heartbeat is emitted periodically by the watcher purely for visibility
// in logs; nothing downstream acts on it.
type Heartbeat struct {
	Instruments []string
}
