// Package ebus is an in-process, synchronous event bus keyed by the
// concrete type name of the event value. It has no notion of priority or
// async delivery: Emit calls every registered handler for an event's type
// in registration order, on the caller's goroutine, and returns the first
// error any of them produces.
package ebus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// EBus routes events to handlers subscribed by the event's type name.
type EBus struct {
	listeners map[string][]Listener
	mx        sync.RWMutex
}

// New returns an EBus with no subscriptions.
func New() *EBus {
	return &EBus{
		listeners: make(map[string][]Listener),
	}
}

// Subscribe registers handler for events sharing event's concrete type.
func (e *EBus) Subscribe(event any, handler Listener) *EBus {
	e.mx.Lock()
	defer e.mx.Unlock()

	name := reflect.TypeOf(event).Name()

	if _, ok := e.listeners[name]; !ok {
		e.listeners[name] = make([]Listener, 0)
	}
	e.listeners[name] = append(e.listeners[name], handler)

	return e
}

// Emit delivers event to every handler subscribed to its type, in
// subscription order, stopping at the first error.
func (e *EBus) Emit(ctx context.Context, event any) error {
	e.mx.RLock()
	defer e.mx.RUnlock()

	name := reflect.TypeOf(event).Name()

	if _, ok := e.listeners[name]; !ok {
		return fmt.Errorf("no listener registered for event type %T", event)
	}

	for _, handler := range e.listeners[name] {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

// HasListeners reports whether any handler is subscribed to event's type,
// which lets an emitter check for subscribers up front instead of getting
// the error Emit returns when none are registered. No service in this
// repository calls it.
func (e *EBus) HasListeners(event any) bool {
	e.mx.RLock()
	defer e.mx.RUnlock()

	_, ok := e.listeners[reflect.TypeOf(event).Name()]
	return ok
}
