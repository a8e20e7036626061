package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/quantling/pricecore/internal/entity"
)

// TradeFeed publishes WireTrade records to the live trade-feed topic.
// Adapted from the teacher's repository.Trade.
type TradeFeed struct {
	producer sarama.SyncProducer
	topic    string
}

// NewTradeFeed builds a TradeFeed publishing to topic.
func NewTradeFeed(producer sarama.SyncProducer, topic string) *TradeFeed {
	return &TradeFeed{producer: producer, topic: topic}
}

// Store publishes trade, keyed by instrument so a single partition always
// sees a given instrument's trades in order.
func (t *TradeFeed) Store(ctx context.Context, trade entity.WireTrade) error {
	payload, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("marshal wire trade: %w", err)
	}

	_, _, err = t.producer.SendMessage(&sarama.ProducerMessage{
		Topic: t.topic,
		Key:   sarama.StringEncoder(trade.Instrument),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("send trade to kafka: %w", err)
	}
	return nil
}
