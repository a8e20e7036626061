package priceest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantling/pricecore/internal/model"
)

type stubVol struct {
	val model.PriceInterval
	ok  bool
}

func (s *stubVol) AddTrade(model.Trade) {}
func (s *stubVol) EvalAtTime(model.Timestamp) (model.PriceInterval, bool) {
	return s.val, s.ok
}

func trade(price int64, t uint64) model.Trade {
	return model.Trade{Price: model.PriceVal(price), Time: model.Timestamp(t)}
}

func TestNoTradesYieldsNoEstimate(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}))
	_, ok := m.EvalAtTime(0)
	assert.False(t, ok)
}

func TestFloorAppliesAtZeroElapsed(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}))
	m.AddTrade(trade(100, 0))

	est, ok := m.EvalAtTime(0)
	assert.True(t, ok)
	assert.Equal(t, model.PriceVal(100), est.Price)
	assert.GreaterOrEqual(t, float64(est.Conf), 0.01)
	assert.Less(t, float64(est.Conf), 1.0)
}

func TestRangeDominatesFloor(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}))
	m.AddTrade(trade(100, 0))
	m.AddTrade(trade(110, uint64(model.NsPerSec)))

	est, ok := m.EvalAtTime(model.Timestamp(model.NsPerSec))
	assert.True(t, ok)
	assert.Equal(t, model.PriceVal(110), est.Price)
	assert.GreaterOrEqual(t, float64(est.Conf), 5.0)
}

func TestRangeClearedAfterEval(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}))
	m.AddTrade(trade(100, 0))
	m.AddTrade(trade(110, uint64(model.NsPerSec)))

	first, _ := m.EvalAtTime(model.Timestamp(model.NsPerSec))
	second, ok := m.EvalAtTime(model.Timestamp(model.NsPerSec))
	assert.True(t, ok)
	assert.Equal(t, first.Price, second.Price)
	assert.Less(t, float64(second.Conf), float64(first.Conf))
}

func TestStaleReturnsNoneAndPreservesRange(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}), WithTimeout(model.NsPerSec))
	m.AddTrade(trade(100, 0))
	m.AddTrade(trade(200, 0))

	_, ok := m.EvalAtTime(model.Timestamp(model.NsPerSec + 1))
	assert.False(t, ok)
	assert.True(t, m.hasRangeSince, "stale eval must not clear range_since_eval")

	est, ok := m.EvalAtTime(model.Timestamp(model.NsPerSec))
	assert.True(t, ok)
	assert.GreaterOrEqual(t, float64(est.Conf), 50.0)
}

func TestElapsedExactlyTimeoutStillValid(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}), WithTimeout(model.NsPerSec))
	m.AddTrade(trade(100, 0))

	_, ok := m.EvalAtTime(model.Timestamp(model.NsPerSec))
	assert.True(t, ok)
}

func TestVolatilityFallsBackToInitVolatility(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{ok: false}), WithInitVolatility(2.0), WithMinConfInterval(0))
	m.AddTrade(trade(1000, 0))

	elapsed := model.Duration(10) * model.NsPerSec
	est, ok := m.EvalAtTime(model.Timestamp(elapsed))
	assert.True(t, ok)

	years := float64(elapsed) / float64(model.NsPerYear)
	expected := 2.0 * math.Sqrt(years) * 1000.0
	assert.InDelta(t, expected, float64(est.Conf), expected*1e-9)
}

func TestMonotoneViolationPanics(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}))
	m.AddTrade(trade(100, uint64(model.NsPerSec)))

	assert.Panics(t, func() {
		m.EvalAtTime(0)
	})
}

func TestConstructionPreconditions(t *testing.T) {
	assert.Panics(t, func() {
		New(WithMinSlot(model.NsPerSec), WithTimeout(model.NsPerSec))
	})
}

func TestCheckpointRestoreRoundTrips(t *testing.T) {
	m := New(WithVolatilityModel(&stubVol{}))
	m.AddTrade(trade(100, uint64(model.NsPerSec)))
	m.AddTrade(trade(110, uint64(2*model.NsPerSec)))

	cp := m.Checkpoint("ETH", 42)
	assert.Equal(t, "ETH", cp.Instrument)
	assert.Equal(t, int64(42), cp.Offset)
	assert.True(t, cp.HasLastTrade)
	assert.Equal(t, model.PriceVal(110), cp.LastPrice)
	assert.True(t, cp.HasRange)
	assert.Equal(t, model.PriceVal(110), cp.RangeHigh)
	assert.Equal(t, model.PriceVal(100), cp.RangeLow)

	restored := New(WithVolatilityModel(&stubVol{}))
	restored.Restore(cp)

	est, ok := restored.EvalAtTime(model.Timestamp(2 * model.NsPerSec))
	assert.True(t, ok)
	assert.Equal(t, model.PriceVal(110), est.Price)
}

func TestRestoreWithNoPriorRangeLeavesRangeAbsent(t *testing.T) {
	cp := New(WithVolatilityModel(&stubVol{})).Checkpoint("ETH", 0)
	assert.False(t, cp.HasLastTrade)
	assert.False(t, cp.HasRange)

	restored := New(WithVolatilityModel(&stubVol{}))
	restored.Restore(cp)
	_, ok := restored.EvalAtTime(0)
	assert.False(t, ok)
}
