package gui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColPointer = rl.NewColor(244, 114, 182, 255)
)

const maxTelemetry = 200

type App struct {
	Ctrl      *sim.Controller
	Name      string
	Running   bool
	Telemetry []float64
	Font      rl.Font

	idleEvery time.Duration
	lastIdle  time.Time
	kinetic   *metrics.KineticEnergy
}

func initWindow(run config.Run) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(run.Width), int32(run.Height), "driftfield")
	rl.SetTargetFPS(int32(run.FPS))
	rl.SetExitKey(0)
}

// NewApp builds the controller for cfg. The window must already be open.
func NewApp(cfg config.Config, name string) *App {
	run := cfg.Run.Normalize()
	kinetic := metrics.NewKineticEnergy()

	opts := []sim.Option{
		sim.WithMetrics(kinetic),
		sim.WithIdleThreshold(run.IdleThreshold),
	}
	if run.Seed != 0 {
		opts = append(opts, sim.WithSeed(run.Seed))
	}

	return &App{
		Ctrl:      sim.New(cfg.Sim, opts...),
		Name:      name,
		Running:   true,
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      rl.GetFontDefault(),
		idleEvery: run.IdleCheck,
		lastIdle:  time.Now(),
		kinetic:   kinetic,
	}
}

// Run opens a window sized from cfg.Run and blocks until it is closed.
func Run(cfg config.Config, name string) {
	run := cfg.Run.Normalize()
	if run.ValidateGeometry() != nil {
		run.Width, run.Height = config.DefaultWidth, config.DefaultHeight
	}
	cfg.Run = run

	initWindow(run)
	defer rl.CloseWindow()
	app := NewApp(cfg, name)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

// Geometry is the current window size; the controller reads it every tick,
// so resizing the window never repositions particles.
func (a *App) Geometry() sim.Geometry {
	return sim.Geometry{Width: float64(rl.GetScreenWidth()), Height: float64(rl.GetScreenHeight())}
}

// Update handles input and advances one tick. It returns true when the
// user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}

	now := time.Now()
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		m := rl.GetMousePosition()
		a.Ctrl.MovePointer(r2.Vec{X: float64(m.X), Y: float64(m.Y)}, now)
	}
	if now.Sub(a.lastIdle) >= a.idleEvery {
		a.Ctrl.CheckIdle(now)
		a.lastIdle = now
	}

	a.handleKeys()

	if a.Running && a.Ctrl.Tick(a.Geometry()) {
		a.Telemetry = append(a.Telemetry, a.kinetic.Last())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	return false
}

func (a *App) handleKeys() {
	cfg := a.Ctrl.Config()
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		a.Ctrl.Reseed()
	case rl.IsKeyPressed(rl.KeyP):
		polarity := -cfg.MousePolarity
		a.Ctrl.UpdateConfig(config.Partial{MousePolarity: &polarity})
	case rl.IsKeyPressed(rl.KeyUp):
		gravity := cfg.Gravity + 0.05
		a.Ctrl.UpdateConfig(config.Partial{Gravity: &gravity})
	case rl.IsKeyPressed(rl.KeyDown):
		gravity := cfg.Gravity - 0.05
		a.Ctrl.UpdateConfig(config.Partial{Gravity: &gravity})
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		count := cfg.ParticleCount + 50
		a.Ctrl.UpdateConfig(config.Partial{ParticleCount: &count})
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		count := cfg.ParticleCount - 50
		a.Ctrl.UpdateConfig(config.Partial{ParticleCount: &count})
	case rl.IsKeyPressed(rl.KeyB):
		bounce := cfg.BounceStrength + 0.2
		if bounce > 1+1e-9 {
			bounce = 0
		}
		a.Ctrl.UpdateConfig(config.Partial{BounceStrength: &bounce})
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	frame := a.Ctrl.Snapshot()
	a.drawParticles(frame)
	a.drawPointer(frame)
	a.DrawHUD(frame)

	rl.EndDrawing()
}

func (a *App) DrawHUD(frame sim.Frame) {
	cfg := a.Ctrl.Config()
	a.drawText("driftfield", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Name), 170, 34, 16, ColText)

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	switch {
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	case frame.Idle:
		status, col = "IDLE", ColText
	}
	w := rl.GetScreenWidth()
	a.drawText(status, w-130, 30, 16, col)

	polarity := "attract"
	if cfg.MousePolarity > 0 {
		polarity = "repel"
	}
	a.drawText(fmt.Sprintf("n=%d  g=%.2f  bounce=%.1f  %s  walls=%d", a.Ctrl.Len(), cfg.Gravity, cfg.BounceStrength, polarity, a.Ctrl.LastContacts()), 30, 60, 14, ColText)

	h := rl.GetScreenHeight()
	a.drawText("[SPACE] PAUSE  [R] RESEED  [P] POLARITY  [UP/DN] GRAVITY  [+/-] COUNT  [B] BOUNCE  [Q] QUIT", 30, h-30, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), w-90, h-30, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, rl.GetScreenHeight()-110
	width, height := 300, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("KE: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
