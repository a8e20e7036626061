// Package watcher runs a set of periodic getters, emitting whatever each
// one returns onto the event bus on its own ticker. Used for anything that
// needs to happen on a schedule rather than in response to a trade or a
// tick from the router (e.g. logging a periodic health snapshot).
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quantling/pricecore/pkg/ebus"
)

type watch struct {
	frame  time.Duration
	getter func(ctx context.Context) (any, error)
}

// Watcher holds a set of periodic getters registered via EmitEvery.
type Watcher struct {
	eBus *ebus.EBus
	subs []watch
	mx   sync.Mutex
}

// NewWatcher builds a Watcher publishing to eBus.
func NewWatcher(eBus *ebus.EBus) *Watcher {
	return &Watcher{eBus: eBus}
}

// EmitEvery registers getter to run on its own ticker every frame, with
// whatever it returns emitted on the event bus. Must be called before Run.
func (w *Watcher) EmitEvery(frame time.Duration, getter func(ctx context.Context) (any, error)) *Watcher {
	w.mx.Lock()
	defer w.mx.Unlock()

	w.subs = append(w.subs, watch{frame: frame, getter: getter})
	return w
}

// Run starts every registered getter on its own goroutine and ticker until
// ctx is cancelled or one of them returns an error.
func (w *Watcher) Run(ctx context.Context) error {
	w.mx.Lock()
	defer w.mx.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error)

	for i := range w.subs {
		go func(i int) {
			sub := w.subs[i]

			ticker := time.NewTicker(sub.frame)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					ins, err := sub.getter(ctx)
					if err != nil {
						select {
						case errs <- err:
						case <-ctx.Done():
						}
						return
					}
					_ = w.eBus.Emit(ctx, ins)
				}
			}
		}(i)
	}

	select {
	case err := <-errs:
		return fmt.Errorf("watcher: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogAny is an ebus.Listener that logs event as structured JSON under its
// own type name. Subscribed to the lifecycle events (StateSaved,
// StateRestored, TradeSkipped) and to Heartbeat in cmd/priced.
func LogAny[T any](ctx context.Context, event T) error {
	js, err := json.Marshal(event)
	if err != nil {
		return err
	}
	log.Info().RawJSON("event", js).Msg(reflect.TypeOf(event).Name())
	return nil
}
