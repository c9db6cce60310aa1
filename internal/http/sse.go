package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/timer"
)

const eventBuffer = 16

// StreamTimerEvents writes the current timer state, then one event per tick
// and control action, as server-sent events until the client goes away.
func StreamTimerEvents(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		events, cancel := controls.Subscribe(eventBuffer)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		snap := controls.Timer().Snapshot()
		if err := writeEvent(w, timer.Event{Elapsed: snap.Elapsed, State: snap.State}); err != nil {
			return
		}
		flusher.Flush()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}

				if err := writeEvent(w, event); err != nil {
					slogctx.Debug(r.Context(), "Event stream closed", "error", err)
					return
				}
				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event timer.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
