// Package replay implements the deterministic replay driver described in
// the original's pc::price_model_test::run: two monotone columns (trades,
// evaluations) are interleaved in timestamp order and the model's output at
// each evaluation is compared to an expected (price, confidence) pair
// within a relative tolerance.
package replay

import (
	"math"

	"github.com/quantling/pricecore/internal/column"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/internal/verify"
)

// PriceModel is the capability the driver needs from the model under test.
type PriceModel interface {
	AddTrade(model.Trade)
	EvalAtTime(model.Timestamp) (model.PriceEstimate, bool)
}

// Trades bundles the two parallel trade columns.
type Trades struct {
	Times  column.Column[model.Timestamp]
	Prices column.Column[model.PriceVal]
}

// Evals bundles the three parallel evaluation columns: the query time and
// the expected (price, confidence) pair. A (0, 0) expected pair is the
// sentinel for "no estimate".
type Evals struct {
	Times  column.Column[model.Timestamp]
	Prices column.Column[model.PriceVal]
	Confs  column.Column[model.PriceInterval]
}

// DefaultRTol matches np.allclose's default relative tolerance.
const DefaultRTol model.PriceInterval = 1e-5

// Run interleaves trades and evals against m, asserting every comparison.
// It panics with a *verify.ViolationError on the first broken precondition
// or mismatched estimate; callers that want a clean exit/diagnostic should
// recover at the call site (see cmd/replay).
func Run(m PriceModel, trades Trades, evals Evals, rtol model.PriceInterval) {
	verify.Usage(trades.Times.Size() == trades.Prices.Size(), "trade_times.size == trade_prices.size", trades.Times.Size(), trades.Prices.Size())
	verify.Usage(evals.Times.Size() == evals.Prices.Size(), "eval_times.size == eval_prices.size", evals.Times.Size(), evals.Prices.Size())
	verify.Usage(evals.Times.Size() == evals.Confs.Size(), "eval_times.size == eval_intervals.size", evals.Times.Size(), evals.Confs.Size())

	tradeCount := trades.Times.Size()
	for i := 1; i < tradeCount; i++ {
		verify.Assert(trades.Times.At(i-1) <= trades.Times.At(i), "trade_times[i-1] <= trade_times[i]", trades.Times.At(i-1), trades.Times.At(i))
	}

	evalCount := evals.Times.Size()
	for i := 1; i < evalCount; i++ {
		verify.Assert(evals.Times.At(i-1) <= evals.Times.At(i), "eval_times[i-1] <= eval_times[i]", evals.Times.At(i-1), evals.Times.At(i))
		verify.Assert(evals.Confs.At(i) >= 0, "eval_intervals[i] >= 0", evals.Confs.At(i))
	}

	var tradeIdx, evalIdx int
	const infiniteTime = model.Timestamp(math.MaxUint64)

	for {
		evalTime := infiniteTime
		if evalIdx < evalCount {
			evalTime = evals.Times.At(evalIdx)
		}

		switch {
		case tradeIdx < tradeCount && evalTime > trades.Times.At(tradeIdx):
			m.AddTrade(model.Trade{
				Price: trades.Prices.At(tradeIdx),
				Time:  trades.Times.At(tradeIdx),
			})
			tradeIdx++

		case evalIdx < evalCount:
			expectedPrice := evals.Prices.At(evalIdx)
			expectedConf := evals.Confs.At(evalIdx)

			actual, ok := m.EvalAtTime(evalTime)
			if ok {
				verify.Assert(actual.Price == expectedPrice, "actual.price == expected.price", actual.Price, expectedPrice)
				verify.Assert(actual.Conf >= expectedConf*(1-rtol), "actual.conf >= expected.conf*(1-rtol)", actual.Conf, expectedConf)
				verify.Assert(actual.Conf <= expectedConf*(1+rtol), "actual.conf <= expected.conf*(1+rtol)", actual.Conf, expectedConf)
			} else {
				verify.Assert(expectedPrice == 0, "expected.price == 0", expectedPrice)
				verify.Assert(expectedConf == 0, "expected.conf == 0", expectedConf)
			}

			evalIdx++

		default:
			verify.Assert(tradeIdx == tradeCount, "trade_idx == trade_count", tradeIdx, tradeCount)
			verify.Assert(evalIdx == evalCount, "eval_idx == eval_count", evalIdx, evalCount)
			return
		}
	}
}
