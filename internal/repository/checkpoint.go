// Package repository persists and recovers router state via Kafka, and
// adapts a Kafka partition into the live trade feed the consumer reads
// from. Adapted from the teacher's repository.State and repository.Trade.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/quantling/pricecore/internal/entity"
)

// Checkpoint recovers and persists per-instrument router state on a
// single-partition Kafka topic, keyed by instrument name. Every Store call
// appends one message per instrument; LastState replays the topic from the
// oldest offset and keeps only the newest message per key.
type Checkpoint struct {
	client   sarama.Client
	producer sarama.SyncProducer
	topic    string
}

// NewCheckpoint builds a Checkpoint repository backed by topic.
func NewCheckpoint(client sarama.Client, producer sarama.SyncProducer, topic string) *Checkpoint {
	return &Checkpoint{client: client, producer: producer, topic: topic}
}

// LastState replays topic from the oldest retained offset and returns the
// most recently stored checkpoint per instrument. Assumes a single
// partition, consistent with the teacher's state repository.
func (c *Checkpoint) LastState(ctx context.Context) (entity.State, error) {
	state := entity.State{Instruments: make(map[string]entity.Checkpoint)}

	next, err := c.client.GetOffset(c.topic, 0, sarama.OffsetNewest)
	if err != nil {
		return state, fmt.Errorf("get offset: %w", err)
	}
	if next <= 0 {
		return state, nil
	}

	cons, err := sarama.NewConsumerFromClient(c.client)
	if err != nil {
		return state, fmt.Errorf("new consumer: %w", err)
	}
	defer cons.Close()

	pc, err := cons.ConsumePartition(c.topic, 0, sarama.OffsetOldest)
	if err != nil {
		return state, fmt.Errorf("consume partition: %w", err)
	}
	defer pc.Close()

	last := next - 1
	for {
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case msg := <-pc.Messages():
			var cp entity.Checkpoint
			if err := json.Unmarshal(msg.Value, &cp); err != nil {
				return state, fmt.Errorf("unmarshal checkpoint: %w", err)
			}
			state.Instruments[cp.Instrument] = cp

			if msg.Offset == last {
				return state, nil
			}
		}
	}
}

// Store appends one message per instrument checkpoint in state.
func (c *Checkpoint) Store(ctx context.Context, state entity.State) error {
	if len(state.Instruments) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(state.Instruments))
	for name, cp := range state.Instruments {
		payload, err := json.Marshal(cp)
		if err != nil {
			return fmt.Errorf("marshal checkpoint: %w", err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: c.topic,
			Key:   sarama.StringEncoder(name),
			Value: sarama.ByteEncoder(payload),
		})
	}

	return c.producer.SendMessages(msgs)
}
