package router

import (
	"sync"

	"github.com/quantling/pricecore/config"
	"github.com/quantling/pricecore/internal/candle"
	"github.com/quantling/pricecore/internal/entity"
	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/internal/priceest"
)

// instrument owns one price estimator and the bookkeeping needed to skip
// already-processed trades after a restart. Adapted from the teacher's
// roller.Token, generalised from "rolling volume sums over buckets" to
// "a price estimator fed one trade at a time".
type instrument struct {
	mx sync.RWMutex

	name  string
	model *priceest.Model

	offset int64
}

func newInstrument(name string, cfg config.InstrumentConfig) *instrument {
	return &instrument{
		name:  name,
		model: priceest.New(buildOptions(cfg)...),
	}
}

func buildOptions(cfg config.InstrumentConfig) []priceest.Option {
	candleOpts := make([]candle.Option, 0, 2)
	if cfg.Lookback != nil {
		candleOpts = append(candleOpts, candle.WithLookback(*cfg.Lookback))
	}
	if cfg.CandleDuration != nil {
		candleOpts = append(candleOpts, candle.WithCandleDuration(model.Duration(cfg.CandleDuration.Nanoseconds())))
	}

	opts := []priceest.Option{priceest.WithVolatilityModel(candle.New(candleOpts...))}
	if cfg.MinInterval != nil {
		opts = append(opts, priceest.WithMinConfInterval(model.PriceInterval(*cfg.MinInterval)))
	}
	if cfg.InitVolatility != nil {
		opts = append(opts, priceest.WithInitVolatility(model.PriceInterval(*cfg.InitVolatility)))
	}
	if cfg.Timeout != nil {
		opts = append(opts, priceest.WithTimeout(model.Duration(cfg.Timeout.Nanoseconds())))
	}
	if cfg.MinSlot != nil {
		opts = append(opts, priceest.WithMinSlot(model.Duration(cfg.MinSlot.Nanoseconds())))
	}
	return opts
}

// addTrade feeds trade into the price estimator unless its offset is at or
// behind the last one this instrument has seen.
func (i *instrument) addTrade(trade event.TradeReceived) (skipped bool) {
	i.mx.Lock()
	defer i.mx.Unlock()

	if trade.Offset != 0 && trade.Offset <= i.offset {
		return true
	}

	i.model.AddTrade(trade.Trade)

	if trade.Offset > 0 {
		i.offset = trade.Offset
	}
	return false
}

func (i *instrument) eval(now model.Timestamp) (model.PriceEstimate, bool) {
	i.mx.RLock()
	defer i.mx.RUnlock()
	return i.model.EvalAtTime(now)
}

func (i *instrument) checkpoint() entity.Checkpoint {
	i.mx.RLock()
	defer i.mx.RUnlock()
	return i.model.Checkpoint(i.name, i.offset)
}

func (i *instrument) restore(cp entity.Checkpoint) {
	i.mx.Lock()
	defer i.mx.Unlock()
	i.offset = cp.Offset
	i.model.Restore(cp)
}
