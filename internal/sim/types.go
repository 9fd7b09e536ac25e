package sim

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrLoopRunning indicates Run was called on a loop that is already running.
	ErrLoopRunning = errors.New("sim: loop already running")

	// ErrNoTicks indicates a headless run was asked for zero ticks.
	ErrNoTicks = errors.New("sim: tick count must be positive")
)

// Geometry is the container size in pixels, read once per tick.
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the container can be measured. Ticks against an
// invalid geometry are skipped.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0 && !math.IsInf(g.Width, 0) && !math.IsInf(g.Height, 0)
}

func (g Geometry) Extent() r2.Vec { return r2.Vec{X: g.Width, Y: g.Height} }

// ParticleView is the render-facing copy of one particle.
type ParticleView struct {
	X      float64 `json:"x"` // container fraction, 0-100
	Y      float64 `json:"y"`
	Size   float64 `json:"size"` // pixels
	AtRest bool    `json:"atRest"`
}

const (
	ActiveOpacity = 0.8
	RestOpacity   = 0.4
)

// Opacity is the rendering hint derived from the rest flag.
func (v ParticleView) Opacity() float64 {
	if v.AtRest {
		return RestOpacity
	}
	return ActiveOpacity
}

// Point is a pixel coordinate in the container.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is a read-only snapshot published after each tick.
type Frame struct {
	Tick      uint64         `json:"tick"`
	Idle      bool           `json:"idle"`
	Pointer   Point          `json:"pointer"`
	Particles []ParticleView `json:"particles"`
}

// Result is the outcome of a headless run.
type Result struct {
	Ticks   int
	Skipped int
	Columns []string
	Trace   [][]float64
	Metrics map[string]float64
	Final   Frame
}

// Series extracts one trace column by name.
func (r *Result) Series(name string) []float64 {
	col := -1
	for i, c := range r.Columns {
		if c == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	out := make([]float64, len(r.Trace))
	for i, row := range r.Trace {
		out[i] = row[col]
	}
	return out
}
