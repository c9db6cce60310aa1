package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/domain"
	"github.com/hperssn/practicetimer/internal/keyedstore"
	"github.com/hperssn/practicetimer/internal/storage"
)

const (
	DefaultPrefix   = "practice-session-timer-"
	DefaultInterval = time.Second

	// HistoryKey holds the list of completed session durations in seconds.
	HistoryKey = "elapsedTimes"
)

// TickFunc receives the elapsed seconds after every tick.
type TickFunc func(elapsed int)

type tickHandle struct {
	cancel func()
}

// SessionTimer counts practice seconds and records every finished session.
//
// It is idle until started, running while a tick handle is active and paused
// when it has elapsed seconds but no handle.
type SessionTimer struct {
	mu sync.Mutex

	elapsed int
	handle  *tickHandle

	store       *keyedstore.Store
	scheduler   Scheduler
	interval    time.Duration
	recordEmpty bool
}

type options struct {
	prefix      string
	scheduler   Scheduler
	interval    time.Duration
	recordEmpty bool
}

type Option func(*options)

// WithPrefix sets the key prefix of the history store.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithRecordEmptySessions controls whether stopping a timer with no elapsed
// seconds appends a 0 to the history. Enabled by default.
func WithRecordEmptySessions(record bool) Option {
	return func(o *options) { o.recordEmpty = record }
}

// New creates an idle timer whose history lives in backend.
func New(ctx context.Context, backend storage.Backend, opts ...Option) (*SessionTimer, error) {
	o := options{
		prefix:      DefaultPrefix,
		scheduler:   TickerScheduler{},
		interval:    DefaultInterval,
		recordEmpty: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := keyedstore.New(ctx, backend, o.prefix, map[string]any{
		HistoryKey: domain.History{},
	})
	if err != nil {
		return nil, oops.In("timer").Wrapf(err, "creating history store")
	}

	return &SessionTimer{
		store:       store,
		scheduler:   o.scheduler,
		interval:    o.interval,
		recordEmpty: o.recordEmpty,
	}, nil
}

// Start begins a new session from zero. If the timer is already running the
// active tick source keeps running with its original callback.
func (t *SessionTimer) Start(ctx context.Context, onTick TickFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.elapsed = 0
	t.play(ctx, onTick)
	slogctx.Debug(ctx, "Timer started")
}

// Resume continues counting from the current elapsed time. It is a no-op
// while the timer is running.
func (t *SessionTimer) Resume(ctx context.Context, onTick TickFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.play(ctx, onTick)
	slogctx.Debug(ctx, "Timer resumed", "elapsed", t.elapsed)
}

// Pause stops ticking and keeps the elapsed time. It is a no-op unless running.
func (t *SessionTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.release()
}

// Stop ends the session: ticking stops, the elapsed time is appended to the
// history and the timer returns to zero.
//
// When the history cannot be written the error is returned and the elapsed
// time is kept, leaving the timer paused so the caller can retry.
func (t *SessionTimer) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.release()

	if t.elapsed > 0 || t.recordEmpty {
		if err := t.record(ctx, t.elapsed); err != nil {
			return err
		}
		slogctx.Info(ctx, "Session recorded", "elapsed", t.elapsed)
	}

	t.elapsed = 0
	return nil
}

func (t *SessionTimer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.elapsed
}

// InProgress reports whether the current session has counted any seconds,
// which is also true while paused.
func (t *SessionTimer) InProgress() bool {
	return t.Elapsed() > 0
}

func (t *SessionTimer) State() domain.State {
	return t.Snapshot().State
}

func (t *SessionTimer) Snapshot() domain.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return domain.NewSnapshot(t.handle != nil, t.elapsed)
}

// History returns the recorded durations, oldest first. A history that can
// no longer be decoded is reported as empty.
func (t *SessionTimer) History(ctx context.Context) (domain.History, error) {
	history, _, err := keyedstore.Lookup[domain.History](ctx, t.store, HistoryKey)
	if errors.Is(err, keyedstore.ErrDeserialization) {
		slogctx.Warn(ctx, "Discarding unreadable session history", "error", err)
		return domain.History{}, nil
	}
	if err != nil {
		return nil, oops.In("timer").Wrapf(err, "reading history")
	}
	if history == nil {
		history = domain.History{}
	}

	return history, nil
}

// ClearHistory removes the recorded durations. With all set, the whole
// storage backend is wiped, including data that does not belong to the timer.
func (t *SessionTimer) ClearHistory(ctx context.Context, all bool) error {
	var err error
	if all {
		err = t.store.Clear(ctx)
	} else {
		err = t.store.ClearNamespace(ctx)
	}
	if err != nil {
		return oops.In("timer").With("all", all).Wrapf(err, "clearing history")
	}

	slogctx.Info(ctx, "History cleared", "all", all)
	return nil
}

// play starts a tick source unless one is active. t.mu must be held.
func (t *SessionTimer) play(ctx context.Context, onTick TickFunc) {
	if t.handle != nil {
		return
	}

	h := &tickHandle{}
	t.handle = h
	h.cancel = t.scheduler.Every(t.interval, func() {
		t.tick(ctx, h, onTick)
	})
}

func (t *SessionTimer) tick(ctx context.Context, h *tickHandle, onTick TickFunc) {
	t.mu.Lock()
	if t.handle != h {
		// released between the tick firing and taking the lock
		t.mu.Unlock()
		return
	}
	t.elapsed++
	elapsed := t.elapsed
	t.mu.Unlock()

	slogctx.Debug(ctx, "Timer tick", "elapsed", elapsed)
	if onTick != nil {
		onTick(elapsed)
	}
}

// release cancels the active tick source. t.mu must be held.
func (t *SessionTimer) release() {
	if t.handle == nil {
		return
	}
	t.handle.cancel()
	t.handle = nil
}

// record appends d to the stored history. t.mu must be held.
func (t *SessionTimer) record(ctx context.Context, d int) error {
	history, err := t.History(ctx)
	if err != nil {
		return err
	}

	if err := t.store.Set(ctx, HistoryKey, history.Append(d)); err != nil {
		return oops.In("timer").With("elapsed", d).Wrapf(err, "recording session")
	}

	return nil
}
