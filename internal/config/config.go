package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultParticleCount  = 300
	DefaultGravity        = 0.0
	DefaultFriction       = 0.98
	DefaultInfluence      = 200.0
	DefaultPolarity       = -1.0
	DefaultParticleSize   = 4.0
	DefaultBounceStrength = 0.8
	DefaultRestThreshold  = 0.1

	DefaultTicks  = 600
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
	DefaultFPS    = 60

	DefaultIdleThreshold = 2 * time.Second
	DefaultIdleCheck     = 100 * time.Millisecond

	MinFriction     = 1e-3
	MaxPerturbation = 0.05
)

var (
	ErrOutOfRange      = errors.New("config: value out of range")
	ErrUnknownPreset   = errors.New("config: unknown preset")
	ErrInvalidGeometry = errors.New("config: width and height must be positive")
)

type Config struct {
	Sim Sim `yaml:"sim"`
	Run Run `yaml:"run"`
}

// Sim holds the physics options. Values are clamped by Normalize before
// the controller uses them.
type Sim struct {
	ParticleCount        int     `yaml:"particle_count"`
	Gravity              float64 `yaml:"gravity"`
	Friction             float64 `yaml:"friction"`
	MouseInfluenceRadius float64 `yaml:"mouse_influence_radius"`
	MousePolarity        float64 `yaml:"mouse_polarity"`
	ParticleSize         float64 `yaml:"particle_size"`
	BounceStrength       float64 `yaml:"bounce_strength"`
	Perturbation         float64 `yaml:"perturbation"`
	RestThreshold        float64 `yaml:"rest_threshold"`
}

type Run struct {
	Seed          int64         `yaml:"seed"`
	Ticks         int           `yaml:"ticks"`
	Width         float64       `yaml:"width"`
	Height        float64       `yaml:"height"`
	FPS           int           `yaml:"fps"`
	IdleThreshold time.Duration `yaml:"idle_threshold"`
	IdleCheck     time.Duration `yaml:"idle_check"`
}

func DefaultSim() Sim {
	return Sim{
		ParticleCount:        DefaultParticleCount,
		Gravity:              DefaultGravity,
		Friction:             DefaultFriction,
		MouseInfluenceRadius: DefaultInfluence,
		MousePolarity:        DefaultPolarity,
		ParticleSize:         DefaultParticleSize,
		BounceStrength:       DefaultBounceStrength,
		RestThreshold:        DefaultRestThreshold,
	}
}

func DefaultRun() Run {
	return Run{
		Ticks:         DefaultTicks,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		FPS:           DefaultFPS,
		IdleThreshold: DefaultIdleThreshold,
		IdleCheck:     DefaultIdleCheck,
	}
}

func DefaultConfig() *Config {
	return &Config{Sim: DefaultSim(), Run: DefaultRun()}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Sim = cfg.Sim.Normalize()
	cfg.Run = cfg.Run.Normalize()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize returns a copy with every field forced into its valid range.
// Out-of-range input is corrected silently; NaN falls back to the default.
func (s Sim) Normalize() Sim {
	d := DefaultSim()

	if s.ParticleCount < 0 {
		s.ParticleCount = 0
	}
	s.Gravity = finite(s.Gravity, d.Gravity)

	s.Friction = finite(s.Friction, d.Friction)
	if s.Friction <= 0 {
		s.Friction = MinFriction
	}
	if s.Friction > 1 {
		s.Friction = 1
	}

	s.MouseInfluenceRadius = math.Max(0, finite(s.MouseInfluenceRadius, d.MouseInfluenceRadius))

	switch p := finite(s.MousePolarity, d.MousePolarity); {
	case p > 0:
		s.MousePolarity = 1
	case p < 0:
		s.MousePolarity = -1
	default:
		s.MousePolarity = d.MousePolarity
	}

	s.ParticleSize = math.Max(0, finite(s.ParticleSize, d.ParticleSize))
	s.BounceStrength = clamp(finite(s.BounceStrength, d.BounceStrength), 0, 1)
	s.Perturbation = clamp(finite(s.Perturbation, 0), 0, MaxPerturbation)
	s.RestThreshold = math.Max(0, finite(s.RestThreshold, d.RestThreshold))
	return s
}

// Validate reports the first field Normalize would have to correct.
func (s Sim) Validate() error {
	switch {
	case s.ParticleCount < 0:
		return fmt.Errorf("%w: particle_count %d < 0", ErrOutOfRange, s.ParticleCount)
	case !(s.Friction > 0 && s.Friction <= 1):
		return fmt.Errorf("%w: friction %g not in (0,1]", ErrOutOfRange, s.Friction)
	case !(s.BounceStrength >= 0 && s.BounceStrength <= 1):
		return fmt.Errorf("%w: bounce_strength %g not in [0,1]", ErrOutOfRange, s.BounceStrength)
	case s.MousePolarity != 1 && s.MousePolarity != -1:
		return fmt.Errorf("%w: mouse_polarity %g not +1 or -1", ErrOutOfRange, s.MousePolarity)
	case !(s.Perturbation >= 0 && s.Perturbation <= MaxPerturbation):
		return fmt.Errorf("%w: perturbation %g not in [0,%g]", ErrOutOfRange, s.Perturbation, MaxPerturbation)
	case !(s.ParticleSize >= 0):
		return fmt.Errorf("%w: particle_size %g < 0", ErrOutOfRange, s.ParticleSize)
	case !(s.MouseInfluenceRadius >= 0):
		return fmt.Errorf("%w: mouse_influence_radius %g < 0", ErrOutOfRange, s.MouseInfluenceRadius)
	}
	return nil
}

func (r Run) Normalize() Run {
	d := DefaultRun()
	if r.Ticks < 0 {
		r.Ticks = 0
	}
	if r.FPS <= 0 {
		r.FPS = d.FPS
	}
	if r.IdleThreshold <= 0 {
		r.IdleThreshold = d.IdleThreshold
	}
	if r.IdleCheck <= 0 {
		r.IdleCheck = d.IdleCheck
	}
	return r
}

// FrameInterval is the period of one scheduled tick.
func (r Run) FrameInterval() time.Duration {
	if r.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(r.FPS)
}

func (r Run) ValidateGeometry() error {
	if !(r.Width > 0 && r.Height > 0) {
		return fmt.Errorf("%w: got %gx%g", ErrInvalidGeometry, r.Width, r.Height)
	}
	return nil
}

// Partial carries the fields of an update; nil fields are left unchanged.
type Partial struct {
	ParticleCount        *int     `json:"particleCount,omitempty" yaml:"particle_count,omitempty"`
	Gravity              *float64 `json:"gravity,omitempty" yaml:"gravity,omitempty"`
	Friction             *float64 `json:"friction,omitempty" yaml:"friction,omitempty"`
	MouseInfluenceRadius *float64 `json:"mouseInfluenceRadius,omitempty" yaml:"mouse_influence_radius,omitempty"`
	MousePolarity        *float64 `json:"mousePolarity,omitempty" yaml:"mouse_polarity,omitempty"`
	ParticleSize         *float64 `json:"particleSize,omitempty" yaml:"particle_size,omitempty"`
	BounceStrength       *float64 `json:"bounceStrength,omitempty" yaml:"bounce_strength,omitempty"`
	Perturbation         *float64 `json:"perturbation,omitempty" yaml:"perturbation,omitempty"`
}

// Apply merges p into s and normalizes the result. reseed is true when the
// particle count changed.
func (s Sim) Apply(p Partial) (merged Sim, reseed bool) {
	merged = s
	if p.ParticleCount != nil {
		merged.ParticleCount = *p.ParticleCount
	}
	if p.Gravity != nil {
		merged.Gravity = *p.Gravity
	}
	if p.Friction != nil {
		merged.Friction = *p.Friction
	}
	if p.MouseInfluenceRadius != nil {
		merged.MouseInfluenceRadius = *p.MouseInfluenceRadius
	}
	if p.MousePolarity != nil {
		merged.MousePolarity = *p.MousePolarity
	}
	if p.ParticleSize != nil {
		merged.ParticleSize = *p.ParticleSize
	}
	if p.BounceStrength != nil {
		merged.BounceStrength = *p.BounceStrength
	}
	if p.Perturbation != nil {
		merged.Perturbation = *p.Perturbation
	}
	merged = merged.Normalize()
	return merged, merged.ParticleCount != s.ParticleCount
}

func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
