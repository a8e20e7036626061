package config

import (
	"time"

	"github.com/IBM/sarama"
)

// Config is the static configuration for the priced binary: where Kafka
// lives, what the push server listens on, and the per-instrument model
// parameters.
type Config struct {
	Kafka       Kafka
	Push        Push
	Instruments map[string]InstrumentConfig
}

// Build returns the default configuration. There is no environment
// variable or file loading layer; callers that need overrides construct
// their own Config by hand.
func Build() *Config {
	return &Config{
		Kafka: Kafka{
			TradeTopic:      "trades",
			TradeGroup:      "pricecore",
			CheckpointTopic: "checkpoints",
			Brokers:         []string{"127.0.0.1:9092"},
		},
		Push: Push{
			Addr: "127.0.0.1:4242",
		},
		Instruments: map[string]InstrumentConfig{
			"ETH": {TickScale: 100},
			"BTC": {TickScale: 100},
		},
	}
}

// Kafka holds broker/topic settings for both the live trade feed and the
// checkpoint repository.
type Kafka struct {
	TradeTopic      string
	TradeGroup      string
	CheckpointTopic string
	Brokers         []string
}

// SaramaConfig builds the sarama client configuration shared by the
// producer and consumer group.
func (k Kafka) SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	return cfg
}

// Push holds the push server's listen address.
type Push struct {
	Addr string
}

// InstrumentConfig holds per-instrument model parameters and the wire
// price scale. TickScale converts a decimal wire price into a PriceVal:
// PriceVal = round(wirePrice * TickScale).
type InstrumentConfig struct {
	TickScale      int64
	Lookback       *int
	CandleDuration *time.Duration
	MinInterval    *float64
	InitVolatility *float64
	Timeout        *time.Duration
	MinSlot        *time.Duration
}
