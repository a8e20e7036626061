// Package router owns one price estimator per instrument and wires the
// live trade feed into it. Adapted from the teacher's roller.Roller,
// generalised from "roll up trade volume into time buckets" to "feed
// trades into a standard price estimator and evaluate it on a tick".
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quantling/pricecore/config"
	"github.com/quantling/pricecore/internal/entity"
	"github.com/quantling/pricecore/internal/event"
	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/pkg/ebus"
)

// Restorer is the capability the router needs from a checkpoint
// repository: recover prior state at startup, persist current state
// periodically.
type Restorer interface {
	LastState(context.Context) (entity.State, error)
	Store(context.Context, entity.State) error
}

// Router dispatches incoming trades to the matching instrument's price
// estimator and periodically evaluates and checkpoints every instrument.
type Router struct {
	mx sync.RWMutex

	instruments map[string]*instrument

	restorer Restorer
	restored chan struct{}

	evalInterval  time.Duration
	storeInterval time.Duration

	eBus *ebus.EBus
}

// Option configures a Router at construction.
type Option func(*Router)

// WithEvalInterval overrides how often every instrument is evaluated and a
// PriceUpdated event emitted. Default 500ms.
func WithEvalInterval(d time.Duration) Option {
	return func(r *Router) { r.evalInterval = d }
}

// WithStoreInterval overrides how often the router checkpoints all
// instruments to the restorer. Default 5s.
func WithStoreInterval(d time.Duration) Option {
	return func(r *Router) { r.storeInterval = d }
}

// New builds a Router with no instruments registered. Call AddInstrument
// before Run.
func New(rest Restorer, eBus *ebus.EBus, opts ...Option) *Router {
	r := &Router{
		instruments:   make(map[string]*instrument),
		restored:      make(chan struct{}),
		restorer:      rest,
		eBus:          eBus,
		evalInterval:  500 * time.Millisecond,
		storeInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddInstrument registers name with the given model parameters. Must be
// called before Run.
func (r *Router) AddInstrument(name string, cfg config.InstrumentConfig) *Router {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.instruments[name] = newInstrument(name, cfg)
	return r
}

// HandleTrade feeds a decoded trade into its instrument's estimator,
// unless the offset is at or behind what that instrument has already
// checkpointed. Blocks until Run has finished restoring prior state.
func (r *Router) HandleTrade(ctx context.Context, trade event.TradeReceived) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.restored:
	}

	r.mx.RLock()
	inst, ok := r.instruments[trade.Instrument]
	r.mx.RUnlock()
	if !ok {
		return fmt.Errorf("instrument %s not registered", trade.Instrument)
	}

	if skipped := inst.addTrade(trade); skipped {
		return r.eBus.Emit(ctx, event.TradeSkipped{
			Instrument: trade.Instrument,
			Offset:     trade.Offset,
			Reason:     "offset at or behind checkpoint",
		})
	}
	return nil
}

// Run restores prior state, then evaluates every instrument on
// evalInterval and checkpoints all of them on storeInterval until ctx is
// cancelled.
func (r *Router) Run(ctx context.Context) error {
	state, err := r.restorer.LastState(ctx)
	if err != nil {
		return fmt.Errorf("restorer last state: %w", err)
	}
	r.restore(state)
	close(r.restored)

	offsets := make(map[string]int64, len(state.Instruments))
	for name, cp := range state.Instruments {
		offsets[name] = cp.Offset
	}
	if err := r.eBus.Emit(ctx, event.StateRestored{Offsets: offsets}); err != nil {
		return fmt.Errorf("ebus emit restored: %w", err)
	}

	evalTicker := time.NewTicker(r.evalInterval)
	defer evalTicker.Stop()

	storeTicker := time.NewTicker(r.storeInterval)
	defer storeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-evalTicker.C:
			r.evalAll(ctx, model.Timestamp(now.UnixNano()))
		case <-storeTicker.C:
			state := r.State()
			if err := r.restorer.Store(ctx, state); err != nil {
				return fmt.Errorf("restorer store: %w", err)
			}
			offsets := make(map[string]int64, len(state.Instruments))
			for name, cp := range state.Instruments {
				offsets[name] = cp.Offset
			}
			if err := r.eBus.Emit(ctx, event.StateSaved{Offsets: offsets}); err != nil {
				return fmt.Errorf("ebus emit saved: %w", err)
			}
		}
	}
}

func (r *Router) evalAll(ctx context.Context, now model.Timestamp) {
	r.mx.RLock()
	defer r.mx.RUnlock()

	for name, inst := range r.instruments {
		est, ok := inst.eval(now)
		_ = r.eBus.Emit(ctx, event.PriceUpdated{
			Instrument: name,
			Estimate:   est,
			Present:    ok,
		})
	}
}

// State snapshots every instrument's checkpoint.
func (r *Router) State() entity.State {
	r.mx.RLock()
	defer r.mx.RUnlock()

	state := entity.State{Instruments: make(map[string]entity.Checkpoint, len(r.instruments))}
	for name, inst := range r.instruments {
		state.Instruments[name] = inst.checkpoint()
	}
	return state
}

func (r *Router) restore(state entity.State) {
	r.mx.Lock()
	defer r.mx.Unlock()

	for name, cp := range state.Instruments {
		inst, ok := r.instruments[name]
		if !ok {
			continue
		}
		inst.restore(cp)
	}
}
