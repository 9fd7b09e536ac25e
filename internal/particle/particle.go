package particle

import "gonum.org/v1/gonum/spatial/r2"

const (
	MinMass = 0.5
	MaxMass = 2.0

	MinInfluence = 15.0
	MaxInfluence = 40.0

	DefaultRestThreshold = 0.1

	// FractionScale is the span of the fractional coordinate system.
	FractionScale = 100.0
)

type Particle struct {
	Pos    r2.Vec // container fraction, 0-100 per axis
	Vel    r2.Vec // pixels per frame
	AtRest bool

	mass          float64
	maxInfluence  float64
	restThreshold float64
}

// New builds a particle with explicit immutable properties.
func New(pos, vel r2.Vec, mass, maxInfluence, restThreshold float64) Particle {
	return Particle{
		Pos:           pos,
		Vel:           vel,
		mass:          mass,
		maxInfluence:  maxInfluence,
		restThreshold: restThreshold,
	}
}

func (p *Particle) Mass() float64                 { return p.mass }
func (p *Particle) MaxInfluenceDistance() float64 { return p.maxInfluence }
func (p *Particle) RestThreshold() float64        { return p.restThreshold }

func (p *Particle) Speed() float64 { return r2.Norm(p.Vel) }

// Pixel converts the fractional position into container pixels.
func (p *Particle) Pixel(extent r2.Vec) r2.Vec {
	return r2.Vec{
		X: p.Pos.X / FractionScale * extent.X,
		Y: p.Pos.Y / FractionScale * extent.Y,
	}
}

// SetPixel stores a pixel position back as container fractions.
// extent must be non-zero on both axes.
func (p *Particle) SetPixel(px, extent r2.Vec) {
	p.Pos = r2.Vec{
		X: px.X / extent.X * FractionScale,
		Y: px.Y / extent.Y * FractionScale,
	}
}

// KineticEnergy is 0.5*m*|v|^2 in pixel units.
func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.mass * r2.Norm2(p.Vel)
}
