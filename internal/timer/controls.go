package timer

import (
	"context"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/domain"
)

// Event is delivered to subscribers on every tick and control action.
type Event struct {
	Elapsed int          `json:"elapsed"`
	State   domain.State `json:"state"`
}

// Controls maps the play, pause and reset buttons of a display onto a
// SessionTimer and fans tick events out to every subscribed display.
type Controls struct {
	// serializes control actions so Play sees a stable InProgress
	opMu  sync.Mutex
	timer *SessionTimer

	mu     sync.Mutex
	subs   map[uint64]chan Event
	nextID uint64
	closed bool
}

func NewControls(t *SessionTimer) *Controls {
	return &Controls{
		timer: t,
		subs:  make(map[uint64]chan Event),
	}
}

func (c *Controls) Timer() *SessionTimer {
	return c.timer
}

// Play resumes a session in progress, otherwise it starts a new one.
func (c *Controls) Play(ctx context.Context) domain.Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	// ticks outlive the request that started them
	tickCtx := context.WithoutCancel(ctx)
	if c.timer.InProgress() {
		c.timer.Resume(tickCtx, c.onTick)
	} else {
		c.timer.Start(tickCtx, c.onTick)
	}

	return c.publishSnapshot()
}

func (c *Controls) Pause(ctx context.Context) domain.Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.timer.Pause()
	slogctx.Debug(ctx, "Timer paused", "elapsed", c.timer.Elapsed())

	return c.publishSnapshot()
}

// Reset stops the timer, which records the session, and resets displays to
// zero. If the session cannot be recorded the displays keep the paused time.
func (c *Controls) Reset(ctx context.Context) (domain.Snapshot, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := c.timer.Stop(ctx); err != nil {
		slogctx.Error(ctx, "Unable to save session", "error", err)
		return c.publishSnapshot(), err
	}

	c.publish(Event{Elapsed: 0, State: domain.StateIdle})
	return c.timer.Snapshot(), nil
}

// Subscribe returns a channel of events and a func to unsubscribe. Events are
// dropped for a subscriber whose buffer is full. After CloseSubscriptions the
// returned channel is already closed.
func (c *Controls) Subscribe(buffer int) (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Event, buffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextID
	c.nextID++
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

// CloseSubscriptions closes every subscriber channel and refuses new
// subscriptions, ending streams that only stop when their channel does.
func (c *Controls) CloseSubscriptions() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Controls) onTick(elapsed int) {
	c.publish(Event{Elapsed: elapsed, State: domain.StateRunning})
}

func (c *Controls) publishSnapshot() domain.Snapshot {
	s := c.timer.Snapshot()
	c.publish(Event{Elapsed: s.Elapsed, State: s.State})
	return s
}

func (c *Controls) publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
