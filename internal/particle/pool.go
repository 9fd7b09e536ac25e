package particle

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pool owns the particle slice. It is not safe for concurrent use; the
// simulation controller confines it to a single goroutine.
type Pool struct {
	particles     []Particle
	rng           *rand.Rand
	restThreshold float64
}

func NewPool(rng *rand.Rand) *Pool {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Pool{rng: rng, restThreshold: DefaultRestThreshold}
}

// SetRestThreshold changes the threshold given to particles created by the
// next Initialize. Existing particles keep theirs.
func (p *Pool) SetRestThreshold(v float64) {
	if v < 0 {
		v = 0
	}
	p.restThreshold = v
}

// Initialize discards all particles and seeds count new ones. A count of
// zero or less leaves the pool empty.
func (p *Pool) Initialize(count int) {
	if count < 0 {
		count = 0
	}
	particles := make([]Particle, count)
	for i := range particles {
		particles[i] = p.spawn()
	}
	p.particles = particles
}

func (p *Pool) spawn() Particle {
	return Particle{
		Pos: r2.Vec{
			X: p.rng.Float64() * FractionScale,
			Y: p.rng.Float64() * FractionScale,
		},
		Vel: r2.Vec{
			X: (p.rng.Float64() - 0.5) * 2,
			Y: (p.rng.Float64() - 0.5) * 2,
		},
		mass:          MinMass + p.rng.Float64()*(MaxMass-MinMass),
		maxInfluence:  MinInfluence + p.rng.Float64()*(MaxInfluence-MinInfluence),
		restThreshold: p.restThreshold,
	}
}

func (p *Pool) Len() int { return len(p.particles) }

// Particles returns the backing slice. Callers inside the tick pipeline
// mutate it in place.
func (p *Pool) Particles() []Particle { return p.particles }

// Replace swaps in an explicit particle set, used for scripted scenarios.
func (p *Pool) Replace(particles []Particle) {
	p.particles = particles
}
