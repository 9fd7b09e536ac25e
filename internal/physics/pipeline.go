package physics

import (
	"github.com/san-kum/driftfield/internal/particle"
)

// Pipeline runs the per-particle stages of one frame in order:
// integrate, resolve boundaries, damp.
type Pipeline struct {
	Integrator Euler
	Boundary   Boundary
	Friction   float64
}

// Advance steps a single particle and returns the walls it touched.
func (pl *Pipeline) Advance(p *particle.Particle) Contact {
	px := p.Pixel(pl.Boundary.Extent)
	px = pl.Integrator.Step(p, px)

	var c Contact
	px, p.Vel, c = pl.Boundary.Resolve(px, p.Vel)

	Damp(p, pl.Friction)
	p.SetPixel(px, pl.Boundary.Extent)
	return c
}

// AdvanceAll steps every particle in place and returns the total number
// of wall contacts.
func (pl *Pipeline) AdvanceAll(ps []particle.Particle) int {
	contacts := 0
	for i := range ps {
		contacts += pl.Advance(&ps[i]).Count()
	}
	return contacts
}
