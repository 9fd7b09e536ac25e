// Package pointer tracks the latest pointer position in container-local
// pixels and derives an idle state from the time since the last movement.
package pointer

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultIdleThreshold = 2000 * time.Millisecond
	DefaultCheckInterval = 100 * time.Millisecond
)

// Tracker is written by input events and read once per tick. Both happen
// on the simulation goroutine, so it carries no locks.
type Tracker struct {
	pos      r2.Vec
	lastMove time.Time
	idle     bool
}

// NewTracker starts active at the container origin, as if the pointer had
// just moved at now.
func NewTracker(now time.Time) *Tracker {
	return &Tracker{lastMove: now}
}

// Move records a pointer observation. It always clears idle.
func (t *Tracker) Move(pos r2.Vec, now time.Time) {
	t.pos = pos
	t.lastMove = now
	t.idle = false
}

// IsIdle reports whether more than threshold has elapsed since the last
// movement. It does not change the tracked state.
func (t *Tracker) IsIdle(now time.Time, threshold time.Duration) bool {
	return now.Sub(t.lastMove) > threshold
}

// Check is the periodic idle evaluation. It only transitions active to
// idle; only Move clears it. Returns the resulting state.
func (t *Tracker) Check(now time.Time, threshold time.Duration) bool {
	if !t.idle && t.IsIdle(now, threshold) {
		t.idle = true
	}
	return t.idle
}

func (t *Tracker) Idle() bool          { return t.idle }
func (t *Tracker) Position() r2.Vec    { return t.pos }
func (t *Tracker) LastMove() time.Time { return t.lastMove }
