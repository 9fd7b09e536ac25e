package config

import (
	"fmt"
	"sort"
)

func with(mutate func(*Sim)) Sim {
	s := DefaultSim()
	mutate(&s)
	return s
}

var Presets = map[string]Sim{
	"hero": DefaultSim(),
	"rain": with(func(s *Sim) {
		s.Gravity = 0.1
	}),
	"zero_g": with(func(s *Sim) {
		s.Friction = 1
		s.BounceStrength = 1
	}),
	"sticky": with(func(s *Sim) {
		s.Gravity = 0.05
		s.BounceStrength = 0
	}),
	"magnet": with(func(s *Sim) {
		s.MousePolarity = -1
		s.MouseInfluenceRadius = 320
	}),
	"repel": with(func(s *Sim) {
		s.MousePolarity = 1
		s.MouseInfluenceRadius = 160
	}),
	"snow": with(func(s *Sim) {
		s.ParticleCount = 600
		s.Gravity = 0.02
		s.Friction = 0.95
		s.ParticleSize = 2
		s.Perturbation = 0.05
	}),
}

func GetPreset(name string) (Sim, error) {
	s, ok := Presets[name]
	if !ok {
		return Sim{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return s, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
