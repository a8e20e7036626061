// Command priced runs the live price-estimation service: it consumes a
// Kafka trade feed, maintains one price estimator per instrument,
// checkpoints progress back to Kafka, and serves the current estimate over
// websocket and HTTP. Adapted from the teacher's cmd/volumer.go.
package main

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/quantling/pricecore/config"
	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/internal/repository"
	"github.com/quantling/pricecore/internal/service/consumer"
	"github.com/quantling/pricecore/internal/service/faketrader"
	"github.com/quantling/pricecore/internal/service/interrupter"
	"github.com/quantling/pricecore/internal/service/push"
	"github.com/quantling/pricecore/internal/service/router"
	"github.com/quantling/pricecore/internal/service/watcher"
	"github.com/quantling/pricecore/pkg/app"
	"github.com/quantling/pricecore/pkg/ebus"
	"github.com/quantling/pricecore/pkg/utils"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Build()
	eBus := ebus.New()

	kafkaCl := utils.Must(sarama.NewClient(cfg.Kafka.Brokers, cfg.Kafka.SaramaConfig()))
	defer kafkaCl.Close()
	prod := utils.Must(sarama.NewSyncProducerFromClient(kafkaCl))
	defer prod.Close()

	checkpointRepo := repository.NewCheckpoint(kafkaCl, prod, cfg.Kafka.CheckpointTopic)
	tradeFeed := repository.NewTradeFeed(prod, cfg.Kafka.TradeTopic)

	tickScales := make(map[string]int64, len(cfg.Instruments))
	instruments := make([]string, 0, len(cfg.Instruments))
	for name, inst := range cfg.Instruments {
		tickScales[name] = inst.TickScale
		instruments = append(instruments, name)
	}

	rt := router.New(checkpointRepo, eBus)
	for name, inst := range cfg.Instruments {
		rt.AddInstrument(name, inst)
	}

	cons := utils.Must(consumer.NewConsumer(kafkaCl, cfg.Kafka.TradeTopic, cfg.Kafka.TradeGroup, tickScales, eBus))
	pushServer := push.New(cfg.Push.Addr)
	fakeTrader := faketrader.NewTrader(tradeFeed, decimal.NewFromInt(1000), instruments...)

	watch := watcher.NewWatcher(eBus).
		EmitEvery(30*time.Second, func(ctx context.Context) (any, error) {
			return event.Heartbeat{Instruments: instruments}, nil
		})

	eBus.
		Subscribe(event.StateSaved{}, watcher.LogAny).
		Subscribe(event.StateRestored{}, watcher.LogAny).
		Subscribe(event.TradeSkipped{}, watcher.LogAny).
		Subscribe(event.Heartbeat{}, watcher.LogAny).
		Subscribe(event.StateSaved{}, ebus.Typed(cons.Commit)).
		Subscribe(event.TradeReceived{}, ebus.Typed(rt.HandleTrade)).
		Subscribe(event.PriceUpdated{}, ebus.Typed(pushServer.UpdatePrice))

	err := app.NewApp().
		WithService(rt).
		WithService(fakeTrader).
		WithService(watch).
		WithService(cons).
		WithService(pushServer).
		WithService(interrupter.Interrupter{}).
		Run(context.Background())

	log.Fatal().Err(err).Msg("priced exiting")
}
