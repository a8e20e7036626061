// Command replay is the CLI surface of the replay driver: it takes paths to
// flat binary columns (trade times/prices, expected eval times/prices/
// confidence intervals) and model parameters as paired --key value flags,
// and exits non-zero with a diagnostic on the first broken precondition or
// mismatched estimate.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/quantling/pricecore/internal/candle"
	"github.com/quantling/pricecore/internal/column"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/internal/priceest"
	"github.com/quantling/pricecore/internal/replay"
	"github.com/quantling/pricecore/internal/verify"
)

const usage = `USAGE: replay
  --trade-prices PATH
  --trade-times PATH
  --eval-times PATH
  --eval-prices PATH
  --eval-intervals PATH
  --conf-tolerance FLOAT
  --init-volatility FLOAT
  --min-interval FLOAT
  --min-slot-ms INT
  --timeout-ms INT
  --candle-secs INT
  --lookback INT
`

// args holds the parsed CLI state. Every optional field is a pointer so
// "unset" is distinguishable from "set to the zero value", exactly the
// std::optional<T> shape the original's price_model_test carries.
type args struct {
	tradePrices, tradeTimes string
	evalTimes, evalPrices   string
	evalIntervals           string
	confTolerance           *float64
	initVolatility          *float64
	minInterval             *float64
	minSlotMs               *int64
	timeoutMs               *int64
	candleSecs              *int64
	lookback                *int
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			if _, ok := r.(*verify.ViolationError); ok {
				fmt.Fprint(os.Stderr, usage)
			}
			os.Exit(1)
		}
	}()

	run(os.Args[1:])
}

func run(argv []string) {
	verify.Usage(len(argv)%2 == 0, "argc % 2 == 1", len(argv))

	var a args
	for i := 0; i+1 < len(argv); i += 2 {
		setArg(&a, argv[i], argv[i+1])
	}

	tradeTimes, err := column.OpenFileColumn[model.Timestamp](a.tradeTimes)
	verify.Usage(err == nil, "open trade-times", err)
	defer tradeTimes.Close()

	tradePrices, err := column.OpenFileColumn[model.PriceVal](a.tradePrices)
	verify.Usage(err == nil, "open trade-prices", err)
	defer tradePrices.Close()

	evalTimes, err := column.OpenFileColumn[model.Timestamp](a.evalTimes)
	verify.Usage(err == nil, "open eval-times", err)
	defer evalTimes.Close()

	evalPrices, err := column.OpenFileColumn[model.PriceVal](a.evalPrices)
	verify.Usage(err == nil, "open eval-prices", err)
	defer evalPrices.Close()

	evalIntervals, err := column.OpenFileColumn[model.PriceInterval](a.evalIntervals)
	verify.Usage(err == nil, "open eval-intervals", err)
	defer evalIntervals.Close()

	candleOpts := make([]candle.Option, 0, 2)
	if a.lookback != nil {
		candleOpts = append(candleOpts, candle.WithLookback(*a.lookback))
	}
	if a.candleSecs != nil {
		candleOpts = append(candleOpts, candle.WithCandleDuration(model.Duration(*a.candleSecs)*model.NsPerSec))
	}

	priceOpts := make([]priceest.Option, 0, 4)
	priceOpts = append(priceOpts, priceest.WithVolatilityModel(candle.New(candleOpts...)))
	if a.minInterval != nil {
		priceOpts = append(priceOpts, priceest.WithMinConfInterval(model.PriceInterval(*a.minInterval)))
	}
	if a.timeoutMs != nil {
		priceOpts = append(priceOpts, priceest.WithTimeout(model.Duration(*a.timeoutMs)*model.NsPerMS))
	}
	if a.minSlotMs != nil {
		priceOpts = append(priceOpts, priceest.WithMinSlot(model.Duration(*a.minSlotMs)*model.NsPerMS))
	}
	if a.initVolatility != nil {
		priceOpts = append(priceOpts, priceest.WithInitVolatility(model.PriceInterval(*a.initVolatility)))
	}

	m := priceest.New(priceOpts...)

	rtol := replay.DefaultRTol
	if a.confTolerance != nil {
		rtol = model.PriceInterval(*a.confTolerance)
	}

	replay.Run(
		m,
		replay.Trades{Times: tradeTimes, Prices: tradePrices},
		replay.Evals{Times: evalTimes, Prices: evalPrices, Confs: evalIntervals},
		rtol,
	)
}

func setArg(a *args, key, val string) {
	switch key {
	case "--trade-prices":
		a.tradePrices = val
	case "--trade-times":
		a.tradeTimes = val
	case "--eval-times":
		a.evalTimes = val
	case "--eval-prices":
		a.evalPrices = val
	case "--eval-intervals":
		a.evalIntervals = val
	case "--init-volatility":
		a.initVolatility = parseFloat(val)
	case "--min-interval":
		a.minInterval = parseFloat(val)
	case "--min-slot-ms":
		a.minSlotMs = parseInt(val)
	case "--timeout-ms":
		a.timeoutMs = parseInt(val)
	case "--candle-secs":
		a.candleSecs = parseInt(val)
	case "--lookback":
		n := parseInt(val)
		v := int(*n)
		a.lookback = &v
	case "--conf-tolerance":
		a.confTolerance = parseFloat(val)
	default:
		verify.Usage(false, "unknown flag", key)
	}
}

func parseFloat(val string) *float64 {
	v, err := strconv.ParseFloat(val, 64)
	verify.Usage(err == nil, "parse float", val)
	return &v
}

func parseInt(val string) *int64 {
	v, err := strconv.ParseInt(val, 10, 64)
	verify.Usage(err == nil, "parse int", val)
	return &v
}
