package sim

import (
	"context"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

// PointerScript returns the pointer position for a tick, or false when the
// pointer does not move on that tick.
type PointerScript func(tick int) (r2.Vec, bool)

// HoldPointer moves the pointer to pos on every tick before until.
func HoldPointer(pos r2.Vec, until int) PointerScript {
	return func(tick int) (r2.Vec, bool) {
		return pos, tick < until
	}
}

// TickHook runs before every tick with the synthetic clock reading. It may
// move the pointer or update the configuration.
type TickHook func(tick int, now time.Time, c *Controller)

// Headless runs a controller on a fixed container against a synthetic
// clock that advances one frame interval per tick.
type Headless struct {
	Config  config.Config
	Script  PointerScript
	Hook    TickHook
	Metrics func() []metrics.Metric
}

func (h *Headless) Run(ctx context.Context) (*Result, error) {
	run := h.Config.Run.Normalize()
	if run.Ticks <= 0 {
		return nil, ErrNoTicks
	}
	if err := run.ValidateGeometry(); err != nil {
		return nil, err
	}

	ms := metrics.Default()
	if h.Metrics != nil {
		ms = h.Metrics()
	}

	start := time.Unix(0, 0)
	ctrl := New(h.Config.Sim,
		WithSeed(run.Seed),
		WithStart(start),
		WithIdleThreshold(run.IdleThreshold),
		WithMetrics(ms...),
	)

	result := &Result{
		Columns: make([]string, len(ms)),
		Trace:   make([][]float64, 0, run.Ticks),
		Metrics: make(map[string]float64, len(ms)),
	}
	for i, m := range ms {
		m.Reset()
		result.Columns[i] = m.Name()
	}

	g := Geometry{Width: run.Width, Height: run.Height}
	frame := run.FrameInterval()
	nextIdleCheck := start.Add(run.IdleCheck)

	for i := 0; i < run.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		now := start.Add(time.Duration(i) * frame)
		if h.Script != nil {
			if pos, ok := h.Script(i); ok {
				ctrl.MovePointer(pos, now)
			}
		}
		if h.Hook != nil {
			h.Hook(i, now, ctrl)
		}
		for !nextIdleCheck.After(now) {
			ctrl.CheckIdle(nextIdleCheck)
			nextIdleCheck = nextIdleCheck.Add(run.IdleCheck)
		}

		if !ctrl.Tick(g) {
			result.Skipped++
			continue
		}
		result.Ticks++

		row := make([]float64, len(ms))
		for j, m := range ms {
			if s, ok := m.(metrics.Sampler); ok {
				row[j] = s.Last()
			} else {
				row[j] = m.Value()
			}
		}
		result.Trace = append(result.Trace, row)
	}

	for _, m := range ms {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = ctrl.Snapshot()
	return result, nil
}
