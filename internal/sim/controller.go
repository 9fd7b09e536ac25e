package sim

import (
	"math/rand"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/particle"
	"github.com/san-kum/driftfield/internal/physics"
	"github.com/san-kum/driftfield/internal/pointer"
	"gonum.org/v1/gonum/spatial/r2"
)

// Controller owns the configuration, the particle pool and the pointer
// tracker, and runs one tick per call. It is confined to one goroutine.
type Controller struct {
	cfg           config.Sim
	idleThreshold time.Duration

	rng     *rand.Rand
	pool    *particle.Pool
	tracker *pointer.Tracker
	jitter  *physics.UniformJitter
	metrics []metrics.Metric

	ticks        uint64
	lastContacts int
}

type Option func(*Controller)

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

func WithSeed(seed int64) Option {
	return func(c *Controller) { c.rng = rand.New(rand.NewSource(seed)) }
}

func WithMetrics(ms ...metrics.Metric) Option {
	return func(c *Controller) { c.metrics = append(c.metrics, ms...) }
}

func WithIdleThreshold(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.idleThreshold = d
		}
	}
}

// WithStart sets the clock reading the pointer tracker treats as the last
// movement. Defaults to time.Now.
func WithStart(now time.Time) Option {
	return func(c *Controller) { c.tracker = pointer.NewTracker(now) }
}

func New(cfg config.Sim, opts ...Option) *Controller {
	c := &Controller{
		cfg:           cfg.Normalize(),
		idleThreshold: pointer.DefaultIdleThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.tracker == nil {
		c.tracker = pointer.NewTracker(time.Now())
	}
	c.pool = particle.NewPool(c.rng)
	c.jitter = physics.NewUniformJitter(c.cfg.Perturbation, c.rng)
	c.Reseed()
	return c
}

func (c *Controller) Config() config.Sim { return c.cfg }

// UpdateConfig applies p immediately. A changed particle count reseeds
// the pool; every other field takes effect on the next tick without
// touching particle state. Returns whether the pool was reseeded.
func (c *Controller) UpdateConfig(p config.Partial) bool {
	merged, reseed := c.cfg.Apply(p)
	c.cfg = merged
	c.jitter.Magnitude = merged.Perturbation
	if reseed {
		c.Reseed()
	}
	return reseed
}

// Reseed discards all particles and creates ParticleCount new ones.
func (c *Controller) Reseed() {
	c.pool.SetRestThreshold(c.cfg.RestThreshold)
	c.pool.Initialize(c.cfg.ParticleCount)
}

// ReplaceParticles installs an explicit particle set. The configured count
// follows the new set so the next UpdateConfig does not reseed spuriously.
func (c *Controller) ReplaceParticles(ps []particle.Particle) {
	c.pool.Replace(ps)
	c.cfg.ParticleCount = len(ps)
}

// MovePointer records a pointer observation in container-local pixels.
func (c *Controller) MovePointer(pos r2.Vec, now time.Time) {
	c.tracker.Move(pos, now)
}

// CheckIdle runs the periodic idle evaluation.
func (c *Controller) CheckIdle(now time.Time) bool {
	return c.tracker.Check(now, c.idleThreshold)
}

func (c *Controller) Idle() bool        { return c.tracker.Idle() }
func (c *Controller) Pointer() r2.Vec   { return c.tracker.Position() }
func (c *Controller) Ticks() uint64     { return c.ticks }
func (c *Controller) LastContacts() int { return c.lastContacts }
func (c *Controller) Len() int          { return c.pool.Len() }

// Metrics returns the attached metrics in attachment order.
func (c *Controller) Metrics() []metrics.Metric { return c.metrics }

// Tick advances every particle by one frame. With an unmeasurable
// container it does nothing and returns false.
func (c *Controller) Tick(g Geometry) bool {
	if !g.Valid() {
		return false
	}

	pl := physics.Pipeline{
		Integrator: physics.Euler{
			Field: field.Field{
				Pointer:  c.tracker.Position(),
				Radius:   c.cfg.MouseInfluenceRadius,
				Polarity: c.cfg.MousePolarity,
				Idle:     c.tracker.Idle(),
			},
			Gravity: c.cfg.Gravity,
		},
		Boundary: physics.Boundary{
			Extent: g.Extent(),
			Size:   c.cfg.ParticleSize,
			Bounce: c.cfg.BounceStrength,
		},
		Friction: c.cfg.Friction,
	}
	if c.jitter.Magnitude > 0 {
		pl.Integrator.Jitter = c.jitter
	}

	ps := c.pool.Particles()
	c.lastContacts = pl.AdvanceAll(ps)
	for _, m := range c.metrics {
		m.Observe(ps, c.lastContacts)
	}
	c.ticks++
	return true
}

// Snapshot copies the current particle state for a renderer.
func (c *Controller) Snapshot() Frame {
	ps := c.pool.Particles()
	views := make([]ParticleView, len(ps))
	for i := range ps {
		views[i] = ParticleView{
			X:      ps[i].Pos.X,
			Y:      ps[i].Pos.Y,
			Size:   c.cfg.ParticleSize,
			AtRest: ps[i].AtRest,
		}
	}
	pos := c.tracker.Position()
	return Frame{
		Tick:      c.ticks,
		Idle:      c.tracker.Idle(),
		Pointer:   Point{X: pos.X, Y: pos.Y},
		Particles: views,
	}
}

// Particles returns a copy of the particle records.
func (c *Controller) Particles() []particle.Particle {
	ps := c.pool.Particles()
	out := make([]particle.Particle, len(ps))
	copy(out, ps)
	return out
}
