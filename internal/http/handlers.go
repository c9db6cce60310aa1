// Package httpapi serves the practice timer page and its JSON API.
package httpapi

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/config"
	"github.com/hperssn/practicetimer/internal/domain"
	"github.com/hperssn/practicetimer/internal/leaderboard"
	"github.com/hperssn/practicetimer/internal/timer"
)

const (
	msgSaveFailed = "unable to save session"
	msgReadFailed = "unable to read session history"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type leaderboardResponse struct {
	Board   leaderboard.Board   `json:"board"`
	Entries []leaderboard.Entry `json:"entries"`
	Stats   leaderboard.Stats   `json:"stats"`
}

type historyResponse struct {
	ElapsedTimes domain.History `json:"elapsedTimes"`
}

type indexData struct {
	Embed   config.Embed
	Clock   string
	Entries []leaderboard.Entry
}

// NewRouter wires the page, the timer controls and the read endpoints.
func NewRouter(controls *timer.Controls, embedCfg config.Embed) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	r.Get("/", serveIndex(controls, embedCfg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/timer", getTimer(controls))
		r.Post("/timer/play", playTimer(controls))
		r.Post("/timer/pause", pauseTimer(controls))
		r.Post("/timer/reset", resetTimer(controls))
		r.Get("/timer/events", StreamTimerEvents(controls))

		r.Get("/leaderboard", getLeaderboard(controls))
		r.Get("/history", getHistory(controls))
	})

	return r
}

func serveIndex(controls *timer.Controls, embedCfg config.Embed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := indexData{
			Embed: embedCfg,
			Clock: leaderboard.FormatClock(controls.Timer().Elapsed()),
		}

		history, err := controls.Timer().History(r.Context())
		if err != nil {
			// the page still works without a leaderboard
			slogctx.Warn(r.Context(), "Rendering page without leaderboard", "error", err)
		} else if board, ok := leaderboard.Compute(history); ok {
			data.Entries = board.Entries()
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, data); err != nil {
			slogctx.Error(r.Context(), "Failed to render page", "error", err)
		}
	}
}

func getTimer(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, controls.Timer().Snapshot(), http.StatusOK)
	}
}

func playTimer(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, controls.Play(r.Context()), http.StatusOK)
	}
}

func pauseTimer(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, controls.Pause(r.Context()), http.StatusOK)
	}
}

func resetTimer(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := controls.Reset(r.Context())
		if err != nil {
			respondError(w, r, msgSaveFailed, http.StatusServiceUnavailable)
			return
		}

		respondJSON(w, r, snap, http.StatusOK)
	}
}

func getLeaderboard(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := controls.Timer().History(r.Context())
		if err != nil {
			slogctx.Error(r.Context(), "Failed to read history", "error", err)
			respondError(w, r, msgReadFailed, http.StatusServiceUnavailable)
			return
		}

		board, ok := leaderboard.Compute(history)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		respondJSON(w, r, leaderboardResponse{
			Board:   board,
			Entries: board.Entries(),
			Stats:   leaderboard.Summarize(history),
		}, http.StatusOK)
	}
}

func getHistory(controls *timer.Controls) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := controls.Timer().History(r.Context())
		if err != nil {
			slogctx.Error(r.Context(), "Failed to read history", "error", err)
			respondError(w, r, msgReadFailed, http.StatusServiceUnavailable)
			return
		}

		respondJSON(w, r, historyResponse{ElapsedTimes: history}, http.StatusOK)
	}
}
