package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"gonum.org/v1/gonum/spatial/r2"
)

// PointerEvent is one pointer observation in container-local pixels.
type PointerEvent struct {
	Pos r2.Vec
	At  time.Time
}

// Loop is the repeating frame task around a Controller. Every mutation of
// the controller happens on the goroutine executing Run; the other methods
// only hand values to it over channels and are safe to call from anywhere.
type Loop struct {
	ctrl      *Controller
	frame     time.Duration
	idleEvery time.Duration
	publish   func(Frame)
	now       func() time.Time

	pointer chan PointerEvent
	resize  chan Geometry
	updates chan config.Partial
	reseed  chan struct{}

	geometry Geometry
	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewLoop schedules ticks every run.FrameInterval and idle checks every
// run.IdleCheck. publish receives a snapshot after each executed tick and
// may be nil.
func NewLoop(ctrl *Controller, run config.Run, publish func(Frame)) *Loop {
	run = run.Normalize()
	return &Loop{
		ctrl:      ctrl,
		frame:     run.FrameInterval(),
		idleEvery: run.IdleCheck,
		publish:   publish,
		now:       time.Now,
		pointer:   make(chan PointerEvent, 1),
		resize:    make(chan Geometry, 1),
		updates:   make(chan config.Partial, 16),
		reseed:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Pointer queues a pointer observation. Only the latest pending
// observation is kept.
func (l *Loop) Pointer(pos r2.Vec) {
	ev := PointerEvent{Pos: pos, At: l.now()}
	for {
		select {
		case l.pointer <- ev:
			return
		default:
		}
		select {
		case <-l.pointer:
		default:
		}
	}
}

// Resize queues a new container geometry; the latest one wins.
func (l *Loop) Resize(g Geometry) {
	for {
		select {
		case l.resize <- g:
			return
		default:
		}
		select {
		case <-l.resize:
		default:
		}
	}
}

// Update queues a configuration change. Updates are applied in order.
func (l *Loop) Update(p config.Partial) {
	select {
	case l.updates <- p:
	case <-l.stop:
	case <-l.done:
	}
}

// Reseed queues a pool reinitialization at the current count.
func (l *Loop) Reseed() {
	select {
	case l.reseed <- struct{}{}:
	default:
	}
}

// Stop cancels the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run executes until ctx is cancelled or Stop is called. A nil error means
// the loop was stopped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	frames := time.NewTicker(l.frame)
	defer frames.Stop()
	idle := time.NewTicker(l.idleEvery)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case ev := <-l.pointer:
			l.ctrl.MovePointer(ev.Pos, ev.At)
		case g := <-l.resize:
			l.geometry = g
		case p := <-l.updates:
			l.ctrl.UpdateConfig(p)
		case <-l.reseed:
			l.ctrl.Reseed()
		case now := <-idle.C:
			l.ctrl.CheckIdle(now)
		case <-frames.C:
			if l.ctrl.Tick(l.geometry) && l.publish != nil {
				l.publish(l.ctrl.Snapshot())
			}
		}
	}
}
