package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantling/pricecore/internal/entity"
)

func TestCheckpointJSONRoundTrips(t *testing.T) {
	cp := entity.Checkpoint{
		Instrument:   "ETH",
		Offset:       42,
		HasLastTrade: true,
		LastPrice:    12345,
		LastTime:     9876543210,
		HasRange:     true,
		RangeHigh:    12400,
		RangeLow:     12300,
	}

	js, err := json.Marshal(cp)
	require.NoError(t, err)

	var decoded entity.Checkpoint
	require.NoError(t, json.Unmarshal(js, &decoded))
	assert.Equal(t, cp, decoded)
}
