package physics

import (
	"github.com/san-kum/driftfield/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// Damp scales velocity by friction and refreshes the rest flag. The flag
// is advisory and is never read back by the integrator.
func Damp(p *particle.Particle, friction float64) {
	p.Vel = r2.Scale(friction, p.Vel)
	p.AtRest = p.Speed() < p.RestThreshold()
}
