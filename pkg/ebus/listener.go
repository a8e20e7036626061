package ebus

import (
	"context"
	"fmt"
)

// Listener handles a single untyped event delivered by EBus.Emit.
type Listener func(ctx context.Context, event interface{}) error

// Typed adapts a handler written against a concrete event type T into a
// Listener, so subscribers never have to type-assert the event themselves.
func Typed[T any](fn func(ctx context.Context, typed T) error) Listener {
	return func(ctx context.Context, event interface{}) error {
		typed, ok := event.(T)
		if !ok {
			return fmt.Errorf("invalid event type %T", event)
		}
		return fn(ctx, typed)
	}
}
