// Package candle implements the Parkinson high-low volatility estimator
// described in the original's pc::candle_model: a fixed-capacity ring of
// time-bucketed (start, high, low) candles, annualised on read.
package candle

import (
	"math"

	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/internal/verify"
)

const (
	defaultLookback     = 20
	defaultCandleNs     = model.NsPerMin
	fourLn2             = 4 * math.Ln2
)

// Option configures a Model at construction.
type Option func(*config)

type config struct {
	lookback *int
	candleNs *model.Duration
}

// WithLookback overrides the number of historical candles considered by the
// volatility estimate, in addition to the current one. Default 20.
func WithLookback(lookback int) Option {
	return func(c *config) { c.lookback = &lookback }
}

// WithCandleDuration overrides the bucket width. Default 60 seconds.
func WithCandleDuration(ns model.Duration) Option {
	return func(c *config) { c.candleNs = &ns }
}

// Model is the default volatility estimator: a ring of candles, each
// covering a fixed-width time bucket, combined pairwise into a Parkinson
// estimator once the ring is full.
type Model struct {
	ring     ring
	candleNs model.Duration
}

// New builds a candle-ring volatility estimator. Capacity is lookback + 1;
// lookback defaults to 20 and candleNs defaults to one minute.
func New(opts ...Option) *Model {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	lookback := defaultLookback
	if cfg.lookback != nil {
		lookback = *cfg.lookback
	}
	candleNs := defaultCandleNs
	if cfg.candleNs != nil {
		candleNs = *cfg.candleNs
	}

	capacity := lookback + 1
	verify.Assert(capacity > 1, "capacity > 1", capacity)
	verify.Assert(candleNs > 0, "candleNs > 0", candleNs)

	return &Model{
		ring:     newRing(capacity),
		candleNs: candleNs,
	}
}

// AddTrade folds trade into the current candle, rolling to a new front
// candle whenever the trade's floored bucket start advances.
func (m *Model) AddTrade(trade model.Trade) {
	start := model.FloorTime(trade.Time, m.candleNs)
	price := model.AsInterval(int64(trade.Price))

	if m.ring.count == 0 {
		m.ring.pushFront(start, price)
	} else if frontStart, _, _ := m.ring.at(0); start > frontStart {
		m.ring.pushFront(start, price)
	}

	frontStart, _, _ := m.ring.at(0)
	verify.Assert(start == frontStart, "start == front.start", start, frontStart)

	m.ring.widenFront(price)
}

// EvalAtTime ignores t (the estimator has no notion of "current time" beyond
// the candles it has already ingested) and returns EvalVolatility. It
// exists so Model satisfies the VolatilityModel interface consumed by
// priceest.Model.
func (m *Model) EvalAtTime(model.Timestamp) (model.PriceInterval, bool) {
	return m.EvalVolatility()
}

// EvalVolatility returns the annualised Parkinson volatility estimate, or
// false while the ring has not yet filled (warm-up period).
func (m *Model) EvalVolatility() (model.PriceInterval, bool) {
	count := m.ring.count
	verify.Assert(count <= m.ring.capacity(), "count <= capacity", count, m.ring.capacity())
	if count < m.ring.capacity() {
		return 0, false
	}

	var numer, denom model.PriceInterval
	for i := 0; i+1 < count; i++ {
		curStart, curHigh, curLow := m.ring.at(i)
		prevStart, prevHigh, prevLow := m.ring.at(i + 1)

		maxHigh := curHigh
		if prevHigh > maxHigh {
			maxHigh = prevHigh
		}
		minLow := curLow
		if prevLow < minLow {
			minLow = prevLow
		}
		verify.Assert(minLow > 0, "min_low > 0", minLow)
		verify.Assert(minLow <= maxHigh, "min_low <= max_high", minLow, maxHigh)

		logRatio := math.Log(float64(maxHigh / minLow))
		numer += model.PriceInterval(logRatio * logRatio)

		curEnd := model.AddTime(curStart, m.candleNs)
		verify.Assert(curEnd > prevStart, "cur_end > prev.start", curEnd, prevStart)
		denom += model.AsInterval(int64(model.DiffTimes(curEnd, prevStart)))
	}

	denom *= fourLn2
	yearNs := model.AsInterval(int64(model.NsPerYear))
	return model.PriceInterval(math.Sqrt(float64(numer / denom * yearNs))), true
}
