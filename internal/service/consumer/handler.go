package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"

	"github.com/quantling/pricecore/internal/entity"
	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/pkg/ebus"
)

var _ sarama.ConsumerGroupHandler = Handler{}

// Handler decodes one Kafka partition's worth of WireTrade messages and
// publishes a TradeReceived (or TradeSkipped on decode/conversion failure)
// per message.
type Handler struct {
	commits    chan int64
	topic      string
	tickScales map[string]int64
	eBus       *ebus.EBus
}

func (h Handler) Setup(session sarama.ConsumerGroupSession) error {
	return nil
}

func (h Handler) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

func (h Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			errs := make(chan error, 1)
			go func() {
				errs <- h.handle(session.Context(), msg)
			}()
			select {
			case err := <-errs:
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("claim handle: %w", err)
				}
			case <-session.Context().Done():
				return nil
			}

		case <-session.Context().Done():
			return nil

		case offset := <-h.commits:
			session.MarkOffset(h.topic, 0, offset+1, "")
		}

	}
}

func (h Handler) commit(ctx context.Context, offset int64) error {
	select {
	case h.commits <- offset:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h Handler) topics() []string {
	return []string{h.topic}
}

func (h Handler) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var wire entity.WireTrade
	if err := json.Unmarshal(message.Value, &wire); err != nil {
		return h.eBus.Emit(ctx, event.TradeSkipped{
			Offset: message.Offset,
			Reason: fmt.Sprintf("unmarshal wire trade: %v", err),
		})
	}

	scale, ok := h.tickScales[wire.Instrument]
	if !ok {
		return h.eBus.Emit(ctx, event.TradeSkipped{
			Instrument: wire.Instrument,
			Offset:     message.Offset,
			Reason:     "unknown instrument",
		})
	}

	price := wire.Price.Mul(decimal.New(scale, 0)).Round(0)
	if !price.IsInteger() || price.IntPart() <= 0 {
		return h.eBus.Emit(ctx, event.TradeSkipped{
			Instrument: wire.Instrument,
			Offset:     message.Offset,
			Reason:     "non-positive or non-integral converted price",
		})
	}

	return h.eBus.Emit(ctx, event.TradeReceived{
		Instrument: wire.Instrument,
		Trade: model.Trade{
			Price: model.PriceVal(price.IntPart()),
			Time:  model.Timestamp(wire.Time.UnixNano()),
		},
		Offset: message.Offset,
	})
}
