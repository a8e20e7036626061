// Package priceest implements the standard price estimator: it tracks the
// most recent trade, the price range observed since the last evaluation,
// and composes a confidence interval from a volatility model, elapsed time,
// a floor, and that range. Modelled on pc::standard_price_model.
package priceest

import (
	"math"

	"github.com/quantling/pricecore/internal/candle"
	"github.com/quantling/pricecore/internal/entity"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/internal/verify"
)

const (
	defaultTimeoutNs  = model.NsPerSec * 60
	defaultMinSlotNs  = model.NsPerMS * 500
	defaultMinConf    = model.PriceInterval(0.01)
	defaultInitVol    = model.PriceInterval(1.0)
)

// VolatilityModel is the capability the price estimator needs from its
// volatility collaborator: feed it trades, ask it for an annualised
// volatility scalar at a point in time. candle.Model is the default
// implementation; tests may inject a stub.
type VolatilityModel interface {
	AddTrade(model.Trade)
	EvalAtTime(model.Timestamp) (model.PriceInterval, bool)
}

// Option configures a Model at construction.
type Option func(*config)

type config struct {
	volModel    VolatilityModel
	minInterval *model.PriceInterval
	initVol     *model.PriceInterval
	timeoutNs   *model.Duration
	minSlotNs   *model.Duration
}

// WithVolatilityModel injects a volatility collaborator, overriding the
// default fresh candle.Model.
func WithVolatilityModel(vm VolatilityModel) Option {
	return func(c *config) { c.volModel = vm }
}

// WithMinConfInterval overrides the floor applied to every confidence
// interval. Default 0.01.
func WithMinConfInterval(v model.PriceInterval) Option {
	return func(c *config) { c.minInterval = &v }
}

// WithInitVolatility overrides the fallback volatility used while the
// volatility model is still warming up. Default 1.0.
func WithInitVolatility(v model.PriceInterval) Option {
	return func(c *config) { c.initVol = &v }
}

// WithTimeout overrides the staleness timeout: how old the last trade may
// be before eval_at_time declines to emit. Default 60s.
func WithTimeout(ns model.Duration) Option {
	return func(c *config) { c.timeoutNs = &ns }
}

// WithMinSlot overrides the minimum elapsed-time slot used when computing
// years-since-trade, preventing a near-zero elapsed time from collapsing
// the confidence interval towards zero. Default 500ms.
func WithMinSlot(ns model.Duration) Option {
	return func(c *config) { c.minSlotNs = &ns }
}

// Model is the standard price estimator.
type Model struct {
	volModel VolatilityModel

	minInterval model.PriceInterval
	initVol     model.PriceInterval
	timeoutNs   model.Duration
	minSlotNs   model.Duration

	lastTrade     model.Trade
	hasLastTrade  bool
	rangeSince    model.PriceRange
	hasRangeSince bool
}

// New builds a standard price estimator with the given options applied over
// the documented defaults.
func New(opts ...Option) *Model {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	volModel := cfg.volModel
	if volModel == nil {
		volModel = candle.New()
	}
	minInterval := defaultMinConf
	if cfg.minInterval != nil {
		minInterval = *cfg.minInterval
	}
	initVol := defaultInitVol
	if cfg.initVol != nil {
		initVol = *cfg.initVol
	}
	timeoutNs := defaultTimeoutNs
	if cfg.timeoutNs != nil {
		timeoutNs = *cfg.timeoutNs
	}
	minSlotNs := defaultMinSlotNs
	if cfg.minSlotNs != nil {
		minSlotNs = *cfg.minSlotNs
	}

	verify.Assert(minInterval >= 0, "min_interval >= 0", minInterval)
	verify.Assert(initVol >= 0, "init_volatility >= 0", initVol)
	verify.Assert(minSlotNs >= 0, "min_slot_ns >= 0", minSlotNs)
	verify.Assert(minSlotNs < timeoutNs, "min_slot_ns < timeout_ns", minSlotNs, timeoutNs)

	return &Model{
		volModel:    volModel,
		minInterval: minInterval,
		initVol:     initVol,
		timeoutNs:   timeoutNs,
		minSlotNs:   minSlotNs,
	}
}

// AddTrade forwards trade to the volatility model, widens (or opens) the
// range-since-eval window, and records trade as the most recent one.
func (m *Model) AddTrade(trade model.Trade) {
	m.volModel.AddTrade(trade)

	if !m.hasRangeSince {
		m.rangeSince = model.NewPriceRange(trade.Price)
		m.hasRangeSince = true
	}
	m.rangeSince.AddPrice(trade.Price)

	m.lastTrade = trade
	m.hasLastTrade = true
}

// EvalAtTime returns the current price estimate, or false if no trade has
// ever arrived or the last trade is older than the staleness timeout.
func (m *Model) EvalAtTime(now model.Timestamp) (model.PriceEstimate, bool) {
	if !m.hasLastTrade {
		return model.PriceEstimate{}, false
	}

	elapsed := model.DiffTimes(now, m.lastTrade.Time)
	verify.Assert(elapsed >= 0, "elapsed >= 0", elapsed)
	if elapsed > m.timeoutNs {
		return model.PriceEstimate{}, false
	}

	yearlyVol, ok := m.volModel.EvalAtTime(now)
	if !ok {
		yearlyVol = m.initVol
	}

	slot := elapsed
	if slot < m.minSlotNs {
		slot = m.minSlotNs
	}
	years := model.AsInterval(int64(slot)) / model.AsInterval(int64(model.NsPerYear))

	conf := yearlyVol * model.PriceInterval(math.Sqrt(float64(years))) * model.AsInterval(int64(m.lastTrade.Price))
	if conf < m.minInterval {
		conf = m.minInterval
	}

	if m.hasRangeSince {
		if rangeConf := m.rangeSince.Interval(); rangeConf > conf {
			conf = rangeConf
		}
		m.hasRangeSince = false
	}

	return model.PriceEstimate{Price: m.lastTrade.Price, Conf: conf}, true
}

// Checkpoint snapshots enough state to resume range_since_eval after a
// restart. The candle ring is deliberately excluded: volatility always
// re-warms from scratch once the process comes back.
func (m *Model) Checkpoint(instrument string, offset int64) entity.Checkpoint {
	cp := entity.Checkpoint{
		Instrument:   instrument,
		Offset:       offset,
		HasLastTrade: m.hasLastTrade,
		HasRange:     m.hasRangeSince,
	}
	if m.hasLastTrade {
		cp.LastPrice = m.lastTrade.Price
		cp.LastTime = m.lastTrade.Time
	}
	if m.hasRangeSince {
		cp.RangeHigh = m.rangeSince.High()
		cp.RangeLow = m.rangeSince.Low()
	}
	return cp
}

// Restore reopens last_trade and range_since_eval from a checkpoint. It has
// no effect on the volatility model, so EvalVolatility returns absent again
// until the candle ring re-warms.
func (m *Model) Restore(cp entity.Checkpoint) {
	m.hasLastTrade = cp.HasLastTrade
	if cp.HasLastTrade {
		m.lastTrade = model.Trade{Price: cp.LastPrice, Time: cp.LastTime}
	}
	m.hasRangeSince = cp.HasRange
	if cp.HasRange {
		m.rangeSince = model.NewPriceRange(cp.RangeLow)
		m.rangeSince.AddPrice(cp.RangeHigh)
	}
}
