// Package entity holds the wire-level types exchanged with the outside
// world: what arrives off Kafka and what gets checkpointed, as opposed to
// the core's own Trade/PriceEstimate types in package model.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WireTrade is the JSON record consumed from the live trade-feed topic.
// Price carries full wire precision; the ingestion boundary (see
// internal/service/consumer) scales it into a model.PriceVal before it
// ever reaches the core. Volume is informational only: the core has no
// notion of trade size.
type WireTrade struct {
	ID         uuid.UUID
	Instrument string
	Price      decimal.Decimal
	Volume     decimal.Decimal
	Time       time.Time
}
