package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no steps")
	ErrUnknownParam  = errors.New("automation: unknown sweep parameter")
)

// Scenario is a scripted headless run: a starting configuration and a list
// of events applied at given ticks.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Ticks       int            `yaml:"ticks"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep fires once at Tick. Pointer moves the pointer, Config
// applies a partial update, Reseed reinitializes the pool.
type ScenarioStep struct {
	Tick    int             `yaml:"tick"`
	Pointer *[2]float64     `yaml:"pointer"`
	Config  *config.Partial `yaml:"config"`
	Reseed  bool            `yaml:"reseed"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyScenario)
	}

	sort.SliceStable(scenario.Steps, func(i, j int) bool {
		return scenario.Steps[i].Tick < scenario.Steps[j].Tick
	})
	return &scenario, nil
}

// Hook returns a tick hook that applies the steps in order. Steps must be
// sorted by tick, as LoadScenario leaves them.
func (s *Scenario) Hook() sim.TickHook {
	next := 0
	return func(tick int, now time.Time, c *sim.Controller) {
		for next < len(s.Steps) && s.Steps[next].Tick <= tick {
			step := s.Steps[next]
			if step.Pointer != nil {
				c.MovePointer(r2.Vec{X: step.Pointer[0], Y: step.Pointer[1]}, now)
			}
			if step.Config != nil {
				c.UpdateConfig(*step.Config)
			}
			if step.Reseed {
				c.Reseed()
			}
			next++
		}
	}
}

// Headless builds the runner for s on top of base. The preset and tick
// count of the scenario override base when set.
func (s *Scenario) Headless(base config.Config) (*sim.Headless, error) {
	if s.Preset != "" {
		p, err := config.GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		base.Sim = p
	}
	if s.Ticks > 0 {
		base.Run.Ticks = s.Ticks
	}
	return &sim.Headless{Config: base, Hook: s.Hook()}, nil
}

// RunScenario executes the scenario as one headless run.
func RunScenario(ctx context.Context, s *Scenario, base config.Config) (*sim.Result, error) {
	h, err := s.Headless(base)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx)
}

// ParameterSweep runs simulations across a range of one parameter.
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the outcome of one sweep point.
type SweepResult struct {
	ParamValue   float64
	MeanEnergy   float64
	PeakSpeed    float64
	RestFraction float64
	WallContacts float64
}

// SweepParams lists the parameters a sweep can vary.
func SweepParams() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var setters = map[string]func(*config.Sim, float64){
	"gravity":      func(s *config.Sim, v float64) { s.Gravity = v },
	"friction":     func(s *config.Sim, v float64) { s.Friction = v },
	"bounce":       func(s *config.Sim, v float64) { s.BounceStrength = v },
	"radius":       func(s *config.Sim, v float64) { s.MouseInfluenceRadius = v },
	"size":         func(s *config.Sim, v float64) { s.ParticleSize = v },
	"perturbation": func(s *config.Sim, v float64) { s.Perturbation = v },
	"count":        func(s *config.Sim, v float64) { s.ParticleCount = int(v) },
}

// RunSweep executes the sweep. Every point uses the same seed so the only
// difference between runs is the swept parameter.
func RunSweep(ctx context.Context, sweep *ParameterSweep, script sim.PointerScript) ([]SweepResult, error) {
	set, ok := setters[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, sweep.ParamName, SweepParams())
	}
	steps := sweep.NumSteps
	if steps < 1 {
		steps = 1
	}

	paramStep := 0.0
	if steps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(steps-1)
	}

	results := make([]SweepResult, 0, steps)
	for i := 0; i < steps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base
		set(&cfg.Sim, paramVal)
		h := sim.Headless{Config: cfg, Script: script}

		result, err := h.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{
			ParamValue:   paramVal,
			MeanEnergy:   result.Metrics["kinetic_energy"],
			PeakSpeed:    result.Metrics["mean_speed"],
			RestFraction: result.Metrics["rest_fraction"],
			WallContacts: result.Metrics["wall_contacts"],
		})
	}

	return results, nil
}
