package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantling/pricecore/internal/column"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/internal/priceest"
)

func vec[T any](vals ...T) column.Column[T] {
	return column.NewVecColumn(vals)
}

func TestReplayNoTradesNoEstimate(t *testing.T) {
	m := priceest.New()

	Run(m,
		Trades{Times: vec[model.Timestamp](), Prices: vec[model.PriceVal]()},
		Evals{
			Times:  vec(model.Timestamp(0)),
			Prices: vec(model.PriceVal(0)),
			Confs:  vec(model.PriceInterval(0)),
		},
		DefaultRTol,
	)
}

func TestReplayRangeDominatesFloor(t *testing.T) {
	m := priceest.New()

	Run(m,
		Trades{
			Times:  vec(model.Timestamp(0), model.Timestamp(model.NsPerSec)),
			Prices: vec(model.PriceVal(100), model.PriceVal(110)),
		},
		Evals{
			// One nanosecond after the second trade, so both trades are
			// strictly earlier than the eval and feed range_since_eval.
			Times:  vec(model.Timestamp(model.NsPerSec + 1)),
			Prices: vec(model.PriceVal(110)),
			Confs:  vec(model.PriceInterval(5)),
		},
		model.PriceInterval(1.0), // loose tolerance: conf only has to land near the range term (5), far above the 0.01 floor
	)
}

func TestReplayTieBreakEvalSeesOnlyStrictlyEarlierTrades(t *testing.T) {
	m := priceest.New()

	// The eval at t0 must run before the trade at t0: no trade has reached
	// the model yet, so it reports no estimate.
	Run(m,
		Trades{
			Times:  vec(model.Timestamp(0)),
			Prices: vec(model.PriceVal(100)),
		},
		Evals{
			Times:  vec(model.Timestamp(0)),
			Prices: vec(model.PriceVal(0)),
			Confs:  vec(model.PriceInterval(0)),
		},
		DefaultRTol,
	)
}

func TestReplayMonotoneViolationPanics(t *testing.T) {
	m := priceest.New()

	assert.Panics(t, func() {
		Run(m,
			Trades{
				Times:  vec(model.Timestamp(10), model.Timestamp(5)),
				Prices: vec(model.PriceVal(1), model.PriceVal(1)),
			},
			Evals{
				Times:  vec[model.Timestamp](),
				Prices: vec[model.PriceVal](),
				Confs:  vec[model.PriceInterval](),
			},
			DefaultRTol,
		)
	})
}
