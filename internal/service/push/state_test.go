package push

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantling/pricecore/internal/model"
)

func TestStateGetReturnsLatest(t *testing.T) {
	s := newState()
	s.update("ETH", model.PriceEstimate{Price: 100, Conf: 1}, true)
	s.update("ETH", model.PriceEstimate{Price: 110, Conf: 2}, true)

	v, ok := s.get("ETH")
	assert.True(t, ok)
	assert.Equal(t, model.PriceVal(110), v.Price)
}

func TestStateGetUnknownInstrument(t *testing.T) {
	s := newState()
	_, ok := s.get("ETH")
	assert.False(t, ok)
}

func TestStateHistoryCapsAtRequestedCount(t *testing.T) {
	s := newState()
	for i := 0; i < 5; i++ {
		s.update("ETH", model.PriceEstimate{Price: model.PriceVal(i), Conf: 0}, true)
	}

	hist := s.history("ETH", 2)
	assert.Len(t, hist, 2)
	assert.Equal(t, model.PriceVal(4), hist[0].Price, "newest entry must be first")
}

func TestStateHistoryDoesNotPadUnfilledSlots(t *testing.T) {
	s := newState()
	s.update("ETH", model.PriceEstimate{Price: 10, Conf: 0}, true)
	s.update("ETH", model.PriceEstimate{Price: 20, Conf: 0}, true)

	hist := s.history("ETH", 64)
	assert.Len(t, hist, 2, "must not return zero-valued padding for slots never pushed")
	assert.Equal(t, model.PriceVal(20), hist[0].Price)
	assert.Equal(t, model.PriceVal(10), hist[1].Price)
}
