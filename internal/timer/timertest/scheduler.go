// Package timertest provides a manually driven timer.Scheduler.
package timertest

import (
	"slices"
	"sync"
	"time"
)

type job struct {
	fn        func()
	cancelled bool
}

// Scheduler fires its schedules only when Tick is called.
type Scheduler struct {
	mu            sync.Mutex
	nextID        int
	jobs          map[int]*job
	keepCancelled bool
}

type Option func(*Scheduler)

// KeepCancelled keeps firing schedules after they are cancelled, like a
// ticker whose tick was already in flight when cancel was called.
func KeepCancelled() Option {
	return func(s *Scheduler) { s.keepCancelled = true }
}

func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{jobs: make(map[int]*job)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.jobs[id] = &job{fn: fn}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.keepCancelled {
			if j, ok := s.jobs[id]; ok {
				j.cancelled = true
			}
			return
		}
		delete(s.jobs, id)
	}
}

// Tick fires every schedule n times, oldest schedule first.
func (s *Scheduler) Tick(n int) {
	for range n {
		s.mu.Lock()
		ids := make([]int, 0, len(s.jobs))
		for id := range s.jobs {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		fns := make([]func(), 0, len(ids))
		for _, id := range ids {
			fns = append(fns, s.jobs[id].fn)
		}
		s.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Active returns the number of schedules that have not been cancelled.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, j := range s.jobs {
		if !j.cancelled {
			n++
		}
	}
	return n
}
