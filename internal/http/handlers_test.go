package httpapi_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/practicetimer/internal/config"
	"github.com/hperssn/practicetimer/internal/domain"
	httpapi "github.com/hperssn/practicetimer/internal/http"
	"github.com/hperssn/practicetimer/internal/storage"
	"github.com/hperssn/practicetimer/internal/timer"
	"github.com/hperssn/practicetimer/internal/timer/timertest"
)

type flakyBackend struct {
	*storage.MemoryBackend
	failing atomic.Bool
}

func (b *flakyBackend) SetItem(ctx context.Context, key, value string) error {
	if b.failing.Load() {
		return errors.New("quota exceeded")
	}
	return b.MemoryBackend.SetItem(ctx, key, value)
}

type fixture struct {
	backend  *flakyBackend
	sched    *timertest.Scheduler
	controls *timer.Controls
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
	sched := timertest.NewScheduler()
	tm, err := timer.New(t.Context(), backend, timer.WithScheduler(sched))
	require.NoError(t, err)

	controls := timer.NewControls(tm)
	return &fixture{
		backend:  backend,
		sched:    sched,
		controls: controls,
		handler: httpapi.NewRouter(controls, config.Embed{
			URL:   "https://www.google.com/search?igu=1&q=timer",
			Title: "Timer",
		}),
	}
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestTimerControls(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/timer/play")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateRunning, decode[domain.Snapshot](t, rec).State)

	f.sched.Tick(3)

	rec = f.do(t, http.MethodPost, "/api/timer/pause")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Snapshot{Elapsed: 3, State: domain.StatePaused, InProgress: true}, decode[domain.Snapshot](t, rec))

	rec = f.do(t, http.MethodGet, "/api/timer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[domain.Snapshot](t, rec).Elapsed)

	rec = f.do(t, http.MethodPost, "/api/timer/reset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StateIdle, decode[domain.Snapshot](t, rec).State)

	rec = f.do(t, http.MethodGet, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"elapsedTimes":[3]}`, rec.Body.String())
}

func TestResetSaveFailure(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/timer/play")
	f.sched.Tick(2)
	f.backend.failing.Store(true)

	rec := f.do(t, http.MethodPost, "/api/timer/reset")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"unable to save session"}`, rec.Body.String())
	assert.Equal(t, 2, f.controls.Timer().Elapsed())
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/leaderboard")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.NoError(t, f.backend.SetItem(t.Context(), timer.DefaultPrefix+timer.HistoryKey, "[65,200,59]"))

	rec = f.do(t, http.MethodGet, "/api/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"board": {"mostRecent": 59, "longest": 200},
		"entries": [
			{"label": "Most recent", "text": "0 minutes"},
			{"label": "Longest", "text": "3 minutes"}
		],
		"stats": {"totalSessions": 3, "totalSeconds": 324, "averageSeconds": 108}
	}`, rec.Body.String())
}

func TestIndexPage(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.backend.SetItem(t.Context(), timer.DefaultPrefix+timer.HistoryKey, "[65,200]"))

	rec := f.do(t, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<h1 id="clock">00:00</h1>`)
	assert.Contains(t, body, "Most recent: 1 minutes")
	assert.Contains(t, body, "Longest: 3 minutes")
	assert.Contains(t, body, `sandbox="allow-scripts allow-forms"`)
	assert.Contains(t, body, `src="https://www.google.com/search?igu=1&amp;q=timer"`)
}

func TestIndexPageFrameWiring(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<p id="frame-status">`)
	assert.Contains(t, body, `frame.addEventListener("load"`)
	assert.Contains(t, body, `e.source !== frame.contentWindow`)
}

func TestRequestID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/timer")
	assert.NotEmpty(t, rec.Header().Get(httpapi.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/timer", nil)
	req.Header.Set(httpapi.RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(httpapi.RequestIDHeader))
}

func TestTimerEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/timer/events", nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(resp.Body)

	assert.Equal(t, timer.Event{Elapsed: 0, State: domain.StateIdle}, <-events)

	f.controls.Play(ctx)
	f.sched.Tick(2)

	assert.Equal(t, timer.Event{Elapsed: 0, State: domain.StateRunning}, <-events)
	assert.Equal(t, timer.Event{Elapsed: 1, State: domain.StateRunning}, <-events)
	assert.Equal(t, timer.Event{Elapsed: 2, State: domain.StateRunning}, <-events)
}

func readEvents(body io.Reader) <-chan timer.Event {
	out := make(chan timer.Event, 64)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(body)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}

			var e timer.Event
			if err := json.Unmarshal([]byte(data), &e); err != nil {
				return
			}
			out <- e
		}
	}()

	return out
}
