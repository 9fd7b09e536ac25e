package physics

import (
	"math/rand"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// Jitter supplies the optional per-particle velocity perturbation.
type Jitter interface {
	Sample() r2.Vec
}

// UniformJitter draws each component uniformly from [-Magnitude, Magnitude].
type UniformJitter struct {
	Magnitude float64
	rng       *rand.Rand
}

func NewUniformJitter(magnitude float64, rng *rand.Rand) *UniformJitter {
	return &UniformJitter{Magnitude: magnitude, rng: rng}
}

func (j *UniformJitter) Sample() r2.Vec {
	if j == nil || j.Magnitude <= 0 {
		return r2.Vec{}
	}
	return r2.Vec{
		X: (j.rng.Float64()*2 - 1) * j.Magnitude,
		Y: (j.rng.Float64()*2 - 1) * j.Magnitude,
	}
}

// Euler applies pointer force, gravity and jitter to the velocity, then
// advances the pixel position by one frame. Returns the new pixel position.
type Euler struct {
	Field   field.Field
	Gravity float64
	Jitter  Jitter
}

func (e *Euler) Step(p *particle.Particle, px r2.Vec) r2.Vec {
	v := r2.Add(p.Vel, e.Field.At(px))
	v.Y += e.Gravity * p.Mass()
	if e.Jitter != nil {
		v = r2.Add(v, e.Jitter.Sample())
	}
	p.Vel = v
	return r2.Add(px, v)
}
