package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestBoundaryReflection(t *testing.T) {
	b := Boundary{Extent: r2.Vec{X: 100, Y: 100}, Size: 4, Bounce: 0.8}

	px, vel, c := b.Resolve(r2.Vec{X: 0, Y: 50}, r2.Vec{X: -5, Y: 0})
	if px.X != 2 {
		t.Errorf("expected x clamped to 2, got %f", px.X)
	}
	if math.Abs(vel.X-4) > 1e-12 {
		t.Errorf("expected vx 4, got %f", vel.X)
	}
	if c != ContactLeft {
		t.Errorf("expected left contact, got %b", c)
	}

	px, vel, c = b.Resolve(r2.Vec{X: 50, Y: 120}, r2.Vec{X: 1, Y: 10})
	if px.Y != 98 || math.Abs(vel.Y+8) > 1e-12 {
		t.Errorf("expected y=98 vy=-8, got y=%f vy=%f", px.Y, vel.Y)
	}
	if vel.X != 1 {
		t.Errorf("x axis must be untouched, got %f", vel.X)
	}
	if c != ContactBottom {
		t.Errorf("expected bottom contact, got %b", c)
	}
}

func TestBoundaryCorner(t *testing.T) {
	b := Boundary{Extent: r2.Vec{X: 100, Y: 80}, Size: 4, Bounce: 1}

	px, vel, c := b.Resolve(r2.Vec{X: 101, Y: -3}, r2.Vec{X: 3, Y: -2})
	if px != (r2.Vec{X: 98, Y: 2}) {
		t.Errorf("expected corner clamp (98, 2), got %v", px)
	}
	if vel != (r2.Vec{X: -3, Y: 2}) {
		t.Errorf("expected both components reflected, got %v", vel)
	}
	if c.Count() != 2 || c&ContactRight == 0 || c&ContactTop == 0 {
		t.Errorf("expected right+top contact, got %b", c)
	}
}

func TestBoundaryStickyWall(t *testing.T) {
	b := Boundary{Extent: r2.Vec{X: 100, Y: 100}, Size: 4, Bounce: 0}
	_, vel, _ := b.Resolve(r2.Vec{X: -1, Y: 50}, r2.Vec{X: -7, Y: 0})
	if vel.X != 0 {
		t.Errorf("expected no rebound, got %f", vel.X)
	}
}

func TestBoundaryOutwardVelocityAtWall(t *testing.T) {
	// Touching the wall while already moving inward keeps the inward sign.
	b := Boundary{Extent: r2.Vec{X: 100, Y: 100}, Size: 4, Bounce: 0.5}
	_, vel, _ := b.Resolve(r2.Vec{X: 2, Y: 50}, r2.Vec{X: 6, Y: 0})
	if vel.X != 3 {
		t.Errorf("expected +3, got %f", vel.X)
	}
}

func TestBoundaryTinyContainer(t *testing.T) {
	b := Boundary{Extent: r2.Vec{X: 3, Y: 100}, Size: 4, Bounce: 1}
	px, vel, _ := b.Resolve(r2.Vec{X: 2.5, Y: 50}, r2.Vec{X: 1, Y: 0})
	if px.X != 1.5 || vel.X != 0 {
		t.Errorf("expected pinned centre, got x=%f vx=%f", px.X, vel.X)
	}
}

func TestEulerOrder(t *testing.T) {
	p := particle.New(r2.Vec{}, r2.Vec{X: 1, Y: 0}, 2, 20, particle.DefaultRestThreshold)
	e := Euler{
		Field:   field.Field{Pointer: r2.Vec{X: 60, Y: 50}, Radius: 20, Polarity: field.Repel},
		Gravity: 0.1,
	}

	next := e.Step(&p, r2.Vec{X: 50, Y: 50})

	// dist 10 of 20 -> influence 0.5, pushed away from pointer along -x.
	expectedVX := 1 - 0.5*field.Coupling
	if math.Abs(p.Vel.X-expectedVX) > 1e-12 {
		t.Errorf("expected vx %f, got %f", expectedVX, p.Vel.X)
	}
	if math.Abs(p.Vel.Y-0.2) > 1e-12 {
		t.Errorf("expected gravity*mass = 0.2, got %f", p.Vel.Y)
	}
	if next != r2.Add(r2.Vec{X: 50, Y: 50}, p.Vel) {
		t.Errorf("position must advance by the updated velocity, got %v", next)
	}
}

func TestEulerIdleIgnoresField(t *testing.T) {
	p := particle.New(r2.Vec{}, r2.Vec{}, 1, 20, particle.DefaultRestThreshold)
	e := Euler{Field: field.Field{Pointer: r2.Vec{X: 1}, Radius: 100, Polarity: field.Repel, Idle: true}}
	e.Step(&p, r2.Vec{})
	if p.Vel != (r2.Vec{}) {
		t.Errorf("expected no force while idle, got %v", p.Vel)
	}
}

func TestUniformJitterBounds(t *testing.T) {
	j := NewUniformJitter(0.05, rand.New(rand.NewSource(3)))
	for i := 0; i < 1000; i++ {
		v := j.Sample()
		if math.Abs(v.X) > 0.05 || math.Abs(v.Y) > 0.05 {
			t.Fatalf("sample %v exceeds magnitude", v)
		}
	}

	var nilJitter *UniformJitter
	if nilJitter.Sample() != (r2.Vec{}) {
		t.Error("nil jitter must be zero")
	}
}

func TestDampRestFlag(t *testing.T) {
	p := particle.New(r2.Vec{}, r2.Vec{X: 0.1, Y: 0}, 1, 20, 0.1)
	Damp(&p, 0.98)
	if math.Abs(p.Vel.X-0.098) > 1e-12 {
		t.Errorf("expected 0.098, got %f", p.Vel.X)
	}
	if !p.AtRest {
		t.Error("expected at rest below threshold")
	}

	p.Vel = r2.Vec{X: 3, Y: 4}
	Damp(&p, 1)
	if p.AtRest {
		t.Error("expected active above threshold")
	}
}

func TestPipelineGravityScenario(t *testing.T) {
	extent := r2.Vec{X: 400, Y: 400}
	p := particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, particle.DefaultRestThreshold)
	pl := Pipeline{
		Integrator: Euler{Field: field.Field{Idle: true}, Gravity: 0.1},
		Boundary:   Boundary{Extent: extent, Size: 4, Bounce: 0.8},
		Friction:   0.98,
	}

	y0 := p.Pixel(extent).Y
	pl.Advance(&p)
	y1 := p.Pixel(extent).Y
	if math.Abs((y1-y0)-0.1) > 1e-9 {
		t.Errorf("tick 1: expected displacement 0.1, got %f", y1-y0)
	}

	pl.Advance(&p)
	y2 := p.Pixel(extent).Y
	if math.Abs((y2-y1)-0.198) > 1e-9 {
		t.Errorf("tick 2: expected displacement 0.198, got %f", y2-y1)
	}

	prev := y2
	for i := 0; i < 10000; i++ {
		if pl.Advance(&p)&ContactBottom != 0 {
			return
		}
		y := p.Pixel(extent).Y
		if y <= prev {
			t.Fatalf("tick %d: expected monotonic descent, %f <= %f", i, y, prev)
		}
		prev = y
	}
	t.Error("particle never reached the floor")
}

func TestPipelineStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pool := particle.NewPool(rng)
	pool.Initialize(200)

	extent := r2.Vec{X: 320, Y: 180}
	size := 6.0
	pl := Pipeline{
		Integrator: Euler{
			Field:   field.Field{Pointer: r2.Vec{X: 160, Y: 90}, Radius: 120, Polarity: field.Attract},
			Gravity: 0.3,
			Jitter:  NewUniformJitter(0.05, rng),
		},
		Boundary: Boundary{Extent: extent, Size: size, Bounce: 1},
		Friction: 1,
	}

	const eps = 1e-9
	for tick := 0; tick < 500; tick++ {
		pl.AdvanceAll(pool.Particles())
		for i := range pool.Particles() {
			px := pool.Particles()[i].Pixel(extent)
			if px.X < size/2-eps || px.X > extent.X-size/2+eps || px.Y < size/2-eps || px.Y > extent.Y-size/2+eps {
				t.Fatalf("tick %d particle %d out of bounds: %v", tick, i, px)
			}
		}
	}
}

func TestPipelineSpeedDecays(t *testing.T) {
	pool := particle.NewPool(rand.New(rand.NewSource(5)))
	pool.Initialize(50)
	extent := r2.Vec{X: 200, Y: 200}
	pl := Pipeline{
		Integrator: Euler{Field: field.Field{Idle: true}},
		Boundary:   Boundary{Extent: extent, Size: 4, Bounce: 0.8},
		Friction:   0.9,
	}

	prev := make([]float64, pool.Len())
	for i, p := range pool.Particles() {
		prev[i] = p.Speed()
	}

	for tick := 0; tick < 200; tick++ {
		pl.AdvanceAll(pool.Particles())
		for i := range pool.Particles() {
			s := pool.Particles()[i].Speed()
			if s > prev[i]+1e-12 {
				t.Fatalf("tick %d particle %d: speed increased %f -> %f", tick, i, prev[i], s)
			}
			prev[i] = s
		}
	}

	for i, p := range pool.Particles() {
		if p.Speed() > 1e-6 {
			t.Errorf("particle %d did not converge: %f", i, p.Speed())
		}
		if !p.AtRest {
			t.Errorf("particle %d should be at rest", i)
		}
	}
}
