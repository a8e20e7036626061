// Package interrupter turns SIGINT/SIGTERM into an error return, so
// pkg/app's run group shuts every other service down the same way it would
// for any other service failure.
package interrupter

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// ErrInterrupted wraps whichever signal caused Run to return.
var ErrInterrupted = fmt.Errorf("got interrupt signal")

// Interrupter has no state; its zero value is ready to run.
type Interrupter struct{}

// Run blocks until ctx is cancelled or the process receives SIGINT or
// SIGTERM.
func (i Interrupter) Run(ctx context.Context) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Warn().Str("signal", sig.String()).Msg("shutting down")
		return fmt.Errorf("%w: %s", ErrInterrupted, sig.String())
	case <-ctx.Done():
		return fmt.Errorf("interrupter: %w", ctx.Err())
	}
}
