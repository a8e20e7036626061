// Package push serves a live price feed over websocket subscriptions, and
// a polling HTTP endpoint, per instrument. Adapted from the teacher's
// service/web package, generalised from pushing volume-roll stats to
// pushing price estimates.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/quantling/pricecore/internal/event"
)

// Server is the push interface's HTTP/websocket frontend.
type Server struct {
	web    *http.Server
	keeper *keeper
	state  *state
}

// New builds a push Server listening on addr.
func New(addr string) *Server {
	s := &Server{
		web:    &http.Server{Addr: addr},
		keeper: newKeeper(),
		state:  newState(),
	}
	s.web.Handler = s.router()
	return s
}

// Run serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	closed := make(chan error, 1)

	go func() {
		closed <- s.web.ListenAndServe()
	}()

	select {
	case err := <-closed:
		return err
	case <-ctx.Done():
		_ = s.web.Shutdown(ctx)
		return ctx.Err()
	}
}

// UpdatePrice records update's estimate and pushes it to every websocket
// connection subscribed to update.Instrument.
func (s *Server) UpdatePrice(ctx context.Context, update event.PriceUpdated) error {
	s.state.update(update.Instrument, update.Estimate, update.Present)

	frame := toFrame(update.Instrument, estimate{PriceEstimate: update.Estimate, Present: update.Present})
	envelope := NewEnvelope(frame)

	err := s.keeper.walkSubs(func(conn *websocket.Conn, instruments map[string]struct{}) error {
		if _, ok := instruments[update.Instrument]; !ok {
			return nil
		}

		js, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}
		return conn.WriteMessage(websocket.TextMessage, js)
	})
	if err != nil {
		return fmt.Errorf("walk subs: %w", err)
	}
	return nil
}
