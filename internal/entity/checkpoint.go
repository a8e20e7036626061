package entity

import "github.com/quantling/pricecore/internal/model"

// Checkpoint is the minimum per-instrument state the live feed needs to
// resume without replaying history: the last committed offset, and enough
// of the price estimator's state to reopen range_since_eval where it left
// off. The candle ring is deliberately not part of this type — volatility
// always re-warms after a restart.
type Checkpoint struct {
	Instrument string
	Offset     int64

	HasLastTrade bool
	LastPrice    model.PriceVal
	LastTime     model.Timestamp

	HasRange  bool
	RangeHigh model.PriceVal
	RangeLow  model.PriceVal
}

// State is the full set of checkpoints recovered from (or about to be
// written to) the checkpoint topic, one per instrument.
type State struct {
	Instruments map[string]Checkpoint
}
