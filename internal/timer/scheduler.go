package timer

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned cancel func is called.
// Calls of fn for one schedule must not overlap.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives schedules from a time.Ticker goroutine. Ticks the
// goroutine cannot keep up with are dropped, not queued.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
