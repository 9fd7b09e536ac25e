package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/driftfield/internal/sim"
)

var ColParticle = rl.NewColor(125, 211, 252, 255)

// particleCenter converts a fractional position to the window pixel at the
// particle's centre.
func particleCenter(p sim.ParticleView, g sim.Geometry) rl.Vector2 {
	return rl.NewVector2(
		float32(p.X/100*g.Width),
		float32(p.Y/100*g.Height),
	)
}

func (a *App) drawParticles(frame sim.Frame) {
	g := a.Geometry()
	for _, p := range frame.Particles {
		radius := float32(p.Size / 2)
		if radius < 1 {
			radius = 1
		}
		rl.DrawCircleV(particleCenter(p, g), radius, rl.Fade(ColParticle, float32(p.Opacity())))
	}
}

func (a *App) drawPointer(frame sim.Frame) {
	if frame.Idle {
		return
	}
	pos := rl.NewVector2(float32(frame.Pointer.X), float32(frame.Pointer.Y))
	cfg := a.Ctrl.Config()
	rl.DrawCircleLines(int32(pos.X), int32(pos.Y), float32(cfg.MouseInfluenceRadius), rl.Fade(ColPointer, 0.15))
	rl.DrawCircleV(pos, 3, ColPointer)
}
