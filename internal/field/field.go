// Package field computes the pointer force applied to particles.
package field

import "gonum.org/v1/gonum/spatial/r2"

// Coupling scales the normalized falloff into pixels per frame.
const Coupling = 0.5

// Polarity selects the direction of the force. The force is
// -unit(pointer - particle) * polarity, so a positive polarity pushes
// particles away from the pointer.
const (
	Repel   = 1.0
	Attract = -1.0
)

// Force returns the velocity change for a particle at p from a pointer at
// ptr. It is zero at the pointer itself and at or beyond radius.
func Force(p, ptr r2.Vec, radius, polarity float64) r2.Vec {
	d := r2.Sub(ptr, p)
	dist := r2.Norm(d)
	if dist == 0 || dist >= radius {
		return r2.Vec{}
	}
	influence := 1 - dist/radius
	return r2.Scale(-influence*polarity*Coupling/dist, d)
}

// Field binds the pointer parameters for one tick.
type Field struct {
	Pointer  r2.Vec
	Radius   float64
	Polarity float64
	Idle     bool
}

// At is Force gated by the pointer idle state.
func (f Field) At(p r2.Vec) r2.Vec {
	if f.Idle {
		return r2.Vec{}
	}
	return Force(p, f.Pointer, f.Radius, f.Polarity)
}
