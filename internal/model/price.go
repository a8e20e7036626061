package model

// PriceVal is a raw instrument-native price. No scaling is applied by the
// core; callers at the ingestion boundary are responsible for converting
// wire prices (e.g. decimal.Decimal) into this integer unit.
type PriceVal int64

// PriceInterval is a non-negative floating-point quantity: a confidence
// half-width, a price difference, or a volatility scalar.
type PriceInterval float64

// AsInterval converts a raw price (or any nanosecond count) to the floating
// point domain used for volatility and confidence arithmetic.
func AsInterval(x int64) PriceInterval {
	return PriceInterval(x)
}

// Trade is a single observed trade: a price at a point in time.
type Trade struct {
	Price PriceVal
	Time  Timestamp
}

// PriceEstimate is the core's output: a price and an accompanying
// non-negative confidence half-width.
type PriceEstimate struct {
	Price PriceVal
	Conf  PriceInterval
}

// PriceRange tracks the high and low of a set of prices seen so far. It
// starts degenerate (high == low == open) and only ever widens.
type PriceRange struct {
	high PriceVal
	low  PriceVal
}

// NewPriceRange opens a range at a single price.
func NewPriceRange(open PriceVal) PriceRange {
	return PriceRange{high: open, low: open}
}

// AddPrice widens the range to include p.
func (r *PriceRange) AddPrice(p PriceVal) {
	if p > r.high {
		r.high = p
	}
	if p < r.low {
		r.low = p
	}
}

// Interval returns (high - low) / 2.
func (r PriceRange) Interval() PriceInterval {
	return AsInterval(int64(r.high-r.low)) / 2
}

// High returns the highest price seen in the range.
func (r PriceRange) High() PriceVal { return r.high }

// Low returns the lowest price seen in the range.
func (r PriceRange) Low() PriceVal { return r.low }
