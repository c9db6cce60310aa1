package domain

import (
	"testing"
)

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name     string
		ticking  bool
		elapsed  int
		expected State
	}{
		{name: "idle", ticking: false, elapsed: 0, expected: StateIdle},
		{name: "running before first tick", ticking: true, elapsed: 0, expected: StateRunning},
		{name: "running", ticking: true, elapsed: 12, expected: StateRunning},
		{name: "paused", ticking: false, elapsed: 3, expected: StatePaused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DeriveState(tt.ticking, tt.elapsed)

			if result != tt.expected {
				t.Fatalf("DeriveState(%v, %d) = %s want %s", tt.ticking, tt.elapsed, result, tt.expected)
			}
		})
	}
}

func TestNewSnapshotInProgress(t *testing.T) {
	if NewSnapshot(true, 0).InProgress {
		t.Fatalf("a timer with no elapsed seconds should not be in progress")
	}
	if !NewSnapshot(false, 1).InProgress {
		t.Fatalf("a paused timer with elapsed seconds should be in progress")
	}
}

func TestHistoryAppendDoesNotMutate(t *testing.T) {
	h := History{1, 2}
	next := h.Append(3)

	if len(h) != 2 {
		t.Fatalf("original history changed: %v", h)
	}
	if len(next) != 3 || next[2] != 3 {
		t.Fatalf("Append = %v, want [1 2 3]", next)
	}
}

func TestHistoryAggregates(t *testing.T) {
	h := History{65, 200, 59}

	last, ok := h.Last()
	if !ok || last != 59 {
		t.Errorf("Last = %d, %v want 59, true", last, ok)
	}

	longest, ok := h.Max()
	if !ok || longest != 200 {
		t.Errorf("Max = %d, %v want 200, true", longest, ok)
	}

	if total := h.Total(); total != 324 {
		t.Errorf("Total = %d want 324", total)
	}
}

func TestHistoryEmpty(t *testing.T) {
	var h History

	if _, ok := h.Last(); ok {
		t.Errorf("Last on empty history should report false")
	}
	if _, ok := h.Max(); ok {
		t.Errorf("Max on empty history should report false")
	}
	if h.Total() != 0 {
		t.Errorf("Total on empty history should be 0")
	}
}
