package metrics

import (
	"math"

	"github.com/san-kum/driftfield/internal/particle"
)

// Metric accumulates a scalar over the particle set once per tick.
type Metric interface {
	Name() string
	Observe(ps []particle.Particle, contacts int)
	Value() float64
	Reset()
}

// Sampler exposes the value observed on the most recent tick.
type Sampler interface {
	Last() float64
}

// KineticEnergy tracks total 0.5*m*|v|^2. Value is the mean over ticks.
type KineticEnergy struct {
	last    float64
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(ps []particle.Particle, _ int) {
	e := 0.0
	for i := range ps {
		e += ps[i].KineticEnergy()
	}
	k.last = e
	k.total += e
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Last() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.last, k.total, k.samples = 0, 0, 0
}

// MeanSpeed is the per-particle mean speed on the latest tick; Value
// reports the peak observed.
type MeanSpeed struct {
	last float64
	peak float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(ps []particle.Particle, _ int) {
	if len(ps) == 0 {
		m.last = 0
		return
	}
	sum := 0.0
	for i := range ps {
		sum += ps[i].Speed()
	}
	m.last = sum / float64(len(ps))
	m.peak = math.Max(m.peak, m.last)
}

func (m *MeanSpeed) Value() float64 { return m.peak }
func (m *MeanSpeed) Last() float64  { return m.last }
func (m *MeanSpeed) Reset()         { m.last, m.peak = 0, 0 }

// RestFraction is the share of particles flagged at rest. Value is the
// fraction on the latest tick.
type RestFraction struct {
	last float64
}

func NewRestFraction() *RestFraction { return &RestFraction{} }

func (r *RestFraction) Name() string { return "rest_fraction" }

func (r *RestFraction) Observe(ps []particle.Particle, _ int) {
	if len(ps) == 0 {
		r.last = 0
		return
	}
	n := 0
	for i := range ps {
		if ps[i].AtRest {
			n++
		}
	}
	r.last = float64(n) / float64(len(ps))
}

func (r *RestFraction) Value() float64 { return r.last }
func (r *RestFraction) Last() float64  { return r.last }
func (r *RestFraction) Reset()         { r.last = 0 }

// WallContacts counts boundary contacts across all ticks.
type WallContacts struct {
	last  int
	total int
}

func NewWallContacts() *WallContacts { return &WallContacts{} }

func (w *WallContacts) Name() string { return "wall_contacts" }

func (w *WallContacts) Observe(_ []particle.Particle, contacts int) {
	w.last = contacts
	w.total += contacts
}

func (w *WallContacts) Value() float64 { return float64(w.total) }
func (w *WallContacts) Last() float64  { return float64(w.last) }
func (w *WallContacts) Reset()         { w.last, w.total = 0, 0 }

// Default returns the standard metric set in trace column order.
func Default() []Metric {
	return []Metric{
		NewKineticEnergy(),
		NewMeanSpeed(),
		NewRestFraction(),
		NewWallContacts(),
	}
}
