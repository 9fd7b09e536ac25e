package particle

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestInitializeCount(t *testing.T) {
	tests := []struct {
		count    int
		expected int
	}{
		{0, 0},
		{1, 1},
		{300, 300},
		{-5, 0},
	}

	for _, tt := range tests {
		pool := NewPool(rand.New(rand.NewSource(7)))
		pool.Initialize(tt.count)
		if pool.Len() != tt.expected {
			t.Errorf("count %d: expected %d particles, got %d", tt.count, tt.expected, pool.Len())
		}
	}
}

func TestInitializeRanges(t *testing.T) {
	pool := NewPool(rand.New(rand.NewSource(42)))
	pool.Initialize(2000)

	for i, p := range pool.Particles() {
		if p.Pos.X < 0 || p.Pos.X > FractionScale || p.Pos.Y < 0 || p.Pos.Y > FractionScale {
			t.Fatalf("particle %d: position out of range: %v", i, p.Pos)
		}
		if math.Abs(p.Vel.X) > 1 || math.Abs(p.Vel.Y) > 1 {
			t.Fatalf("particle %d: velocity out of range: %v", i, p.Vel)
		}
		if p.Mass() < MinMass || p.Mass() >= MaxMass {
			t.Fatalf("particle %d: mass %f outside [%.1f, %.1f)", i, p.Mass(), MinMass, MaxMass)
		}
		if p.MaxInfluenceDistance() < MinInfluence || p.MaxInfluenceDistance() > MaxInfluence {
			t.Fatalf("particle %d: influence %f out of range", i, p.MaxInfluenceDistance())
		}
		if p.RestThreshold() != DefaultRestThreshold {
			t.Fatalf("particle %d: expected rest threshold %f, got %f", i, DefaultRestThreshold, p.RestThreshold())
		}
		if p.AtRest {
			t.Fatalf("particle %d: new particles start active", i)
		}
	}
}

func TestInitializeDiscardsPrevious(t *testing.T) {
	pool := NewPool(rand.New(rand.NewSource(1)))
	pool.Initialize(3)
	first := pool.Particles()[0]

	pool.Initialize(3)
	if pool.Particles()[0] == first {
		t.Error("expected reseed to produce fresh particles")
	}
}

func TestSetRestThresholdAppliesOnReseed(t *testing.T) {
	pool := NewPool(nil)
	pool.Initialize(1)
	pool.SetRestThreshold(0.5)

	if got := pool.Particles()[0].RestThreshold(); got != DefaultRestThreshold {
		t.Errorf("existing particle changed threshold: %f", got)
	}

	pool.Initialize(1)
	if got := pool.Particles()[0].RestThreshold(); got != 0.5 {
		t.Errorf("expected 0.5 after reseed, got %f", got)
	}
}

func TestPixelRoundTrip(t *testing.T) {
	p := New(r2.Vec{X: 25, Y: 50}, r2.Vec{}, 1, 20, DefaultRestThreshold)
	extent := r2.Vec{X: 800, Y: 600}

	px := p.Pixel(extent)
	if px.X != 200 || px.Y != 300 {
		t.Errorf("expected (200, 300), got %v", px)
	}

	p.SetPixel(r2.Vec{X: 400, Y: 150}, extent)
	if math.Abs(p.Pos.X-50) > 1e-9 || math.Abs(p.Pos.Y-25) > 1e-9 {
		t.Errorf("expected (50, 25), got %v", p.Pos)
	}
}

func TestKineticEnergy(t *testing.T) {
	p := New(r2.Vec{}, r2.Vec{X: 3, Y: 4}, 2, 20, DefaultRestThreshold)
	if p.Speed() != 5 {
		t.Errorf("expected speed 5, got %f", p.Speed())
	}
	if p.KineticEnergy() != 25 {
		t.Errorf("expected energy 25, got %f", p.KineticEnergy())
	}
}
