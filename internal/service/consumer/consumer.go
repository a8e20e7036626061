// Package consumer reads WireTrade records off the live trade-feed topic,
// converts wire prices into the core's PriceVal via each instrument's tick
// scale, and publishes the result on the event bus. Adapted from the
// teacher's service/consumer package.
package consumer

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/pkg/ebus"
)

// Consumer drives a sarama consumer group over the live trade-feed topic.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       Handler
}

// NewConsumer builds a Consumer in group, reading topic, converting wire
// prices with tickScales (instrument -> PriceVal units per wire unit), and
// publishing decoded trades on eBus.
func NewConsumer(client sarama.Client, topic, group string, tickScales map[string]int64, eBus *ebus.EBus) (*Consumer, error) {
	cg, err := sarama.NewConsumerGroupFromClient(group, client)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &Consumer{
		consumerGroup: cg,
		handler: Handler{
			commits:    make(chan int64),
			topic:      topic,
			tickScales: tickScales,
			eBus:       eBus,
		},
	}, nil
}

// Run consumes topic until ctx is cancelled or the consumer group reports
// an unrecoverable error.
func (c *Consumer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 1)

	go func() {
		for {
			if err := c.consumerGroup.Consume(ctx, c.handler.topics(), c.handler); err != nil {
				errs <- err
				return
			}

			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("consumer error: %w", err)
	case err := <-c.consumerGroup.Errors():
		return fmt.Errorf("consumer group error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("consumer: %w", ctx.Err())
	}
}

// Commit advances the committed offset on the trade topic's single
// partition past whatever the router last checkpointed, in response to a
// StateSaved event.
func (c *Consumer) Commit(ctx context.Context, saved event.StateSaved) error {
	var max int64 = -1
	for _, offset := range saved.Offsets {
		if offset > max {
			max = offset
		}
	}
	if max < 0 {
		return nil
	}
	return c.handler.commit(ctx, max)
}
