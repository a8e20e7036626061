package push

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (s *Server) router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		s.keeper.addConn(conn)
		go s.keeper.keep(conn)
	})

	mux.HandleFunc("/estimate", func(w http.ResponseWriter, r *http.Request) {
		instrument := r.URL.Query().Get("instrument")
		if instrument == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		est, ok := s.state.get(instrument)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		writeJSON(w, toFrame(instrument, est))
	})

	mux.HandleFunc("/history", func(w http.ResponseWriter, r *http.Request) {
		instrument := r.URL.Query().Get("instrument")
		if instrument == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		count := 64
		if raw := r.URL.Query().Get("count"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				count = n
			}
		}

		hist := s.state.history(instrument, count)
		frames := make([]PriceFrame, 0, len(hist))
		for _, est := range hist {
			frames = append(frames, toFrame(instrument, est))
		}
		writeJSON(w, frames)
	})

	return mux
}

func toFrame(instrument string, est estimate) PriceFrame {
	return PriceFrame{
		Instrument: instrument,
		Price:      int64(est.Price),
		Conf:       float64(est.Conf),
		Present:    est.Present,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
