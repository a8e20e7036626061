package push

import (
	"sync"

	"github.com/quantling/pricecore/internal/model"
	"github.com/quantling/pricecore/pkg/ringbuf"
)

const historySize = 64

// state holds the latest price estimate, and a bounded history of recent
// ones, per instrument.
type state struct {
	mx        sync.RWMutex
	latest    map[string]estimate
	histories map[string]*ringbuf.Ring[estimate]
	pushed    map[string]int
}

type estimate struct {
	model.PriceEstimate
	Present bool
}

func newState() *state {
	return &state{
		latest:    make(map[string]estimate),
		histories: make(map[string]*ringbuf.Ring[estimate]),
		pushed:    make(map[string]int),
	}
}

func (s *state) update(instrument string, est model.PriceEstimate, present bool) {
	s.mx.Lock()
	defer s.mx.Unlock()

	v := estimate{PriceEstimate: est, Present: present}
	s.latest[instrument] = v

	hist, ok := s.histories[instrument]
	if !ok {
		hist = ringbuf.New[estimate](historySize)
		s.histories[instrument] = hist
	}
	hist.PushFront(v)
	if s.pushed[instrument] < historySize {
		s.pushed[instrument]++
	}
}

func (s *state) get(instrument string) (estimate, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	v, ok := s.latest[instrument]
	return v, ok
}

func (s *state) history(instrument string, count int) []estimate {
	s.mx.RLock()
	defer s.mx.RUnlock()

	hist, ok := s.histories[instrument]
	if !ok {
		return nil
	}
	if filled := s.pushed[instrument]; count > filled {
		count = filled
	}
	out := make([]estimate, 0, count)
	hist.WalkFirstN(count, func(v estimate) { out = append(out, v) })
	return out
}
