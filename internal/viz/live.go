package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	defaultCols     = 60
	defaultRows     = 20
	statsWidth      = 40
	historyCapacity = 300

	// DotPixels is the size of one braille dot in container pixels, so
	// the pixel-valued options (radius, size) keep their meaning.
	DotPixels = 4.0

	gravityStep = 0.05
	countStep   = 50
)

var bounceSteps = []float64{0, 0.4, 0.8, 1}

type (
	frameMsg time.Time
	idleMsg  time.Time
)

// Model drives one Controller from the bubbletea event loop. Update runs
// on a single goroutine, so the controller needs no further locking.
type Model struct {
	ctrl      *sim.Controller
	name      string
	frame     time.Duration
	idleEvery time.Duration
	now       func() time.Time

	canvas  *Canvas
	theme   Theme
	running bool

	kinetic *metrics.KineticEnergy
	rest    *metrics.RestFraction
	energy  []float64
	resting []float64
}

// NewModel builds a controller from cfg and wraps it for the terminal.
func NewModel(cfg config.Config, name string) Model {
	kinetic, rest := metrics.NewKineticEnergy(), metrics.NewRestFraction()
	run := cfg.Run.Normalize()

	opts := []sim.Option{
		sim.WithMetrics(kinetic, rest),
		sim.WithIdleThreshold(run.IdleThreshold),
	}
	if run.Seed != 0 {
		opts = append(opts, sim.WithSeed(run.Seed))
	}

	return Model{
		ctrl:      sim.New(cfg.Sim, opts...),
		name:      name,
		frame:     run.FrameInterval(),
		idleEvery: run.IdleCheck,
		now:       time.Now,
		canvas:    NewCanvas(defaultCols, defaultRows),
		theme:     ThemeOcean,
		running:   true,
		kinetic:   kinetic,
		rest:      rest,
		energy:    make([]float64, 0, historyCapacity),
		resting:   make([]float64, 0, historyCapacity),
	}
}

// Controller exposes the wrapped controller.
func (m Model) Controller() *sim.Controller { return m.ctrl }

// Geometry is the container the canvas represents, in pixels.
func (m Model) Geometry() sim.Geometry {
	w, h := m.canvas.Dots()
	return sim.Geometry{Width: float64(w) * DotPixels, Height: float64(h) * DotPixels}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.frameTick(), m.idleTick())
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) idleTick() tea.Cmd {
	return tea.Tick(m.idleEvery, func(t time.Time) tea.Msg { return idleMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.ctrl.MovePointer(m.cellToPixel(msg.X, msg.Y), m.now())
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case frameMsg:
		if m.running {
			m.step()
		}
		return m, m.frameTick()
	case idleMsg:
		m.ctrl.CheckIdle(time.Time(msg))
		return m, m.idleTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cfg := m.ctrl.Config()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.ctrl.Reseed()
	case "p":
		polarity := -cfg.MousePolarity
		m.ctrl.UpdateConfig(config.Partial{MousePolarity: &polarity})
	case "up", "k":
		gravity := cfg.Gravity + gravityStep
		m.ctrl.UpdateConfig(config.Partial{Gravity: &gravity})
	case "down", "j":
		gravity := cfg.Gravity - gravityStep
		m.ctrl.UpdateConfig(config.Partial{Gravity: &gravity})
	case "+", "=":
		count := cfg.ParticleCount + countStep
		m.ctrl.UpdateConfig(config.Partial{ParticleCount: &count})
	case "-", "_":
		count := cfg.ParticleCount - countStep
		m.ctrl.UpdateConfig(config.Partial{ParticleCount: &count})
	case "b":
		bounce := nextBounce(cfg.BounceStrength)
		m.ctrl.UpdateConfig(config.Partial{BounceStrength: &bounce})
	case "t":
		m.theme = NextTheme(m.theme)
	}
	return m, nil
}

func nextBounce(current float64) float64 {
	for _, b := range bounceSteps {
		if b > current+1e-9 {
			return b
		}
	}
	return bounceSteps[0]
}

// cellToPixel maps a terminal cell to the pixel at the centre of the
// matching braille cell, accounting for the canvas padding.
func (m Model) cellToPixel(x, y int) r2.Vec {
	left, top := canvasStyle.GetPaddingLeft(), canvasStyle.GetPaddingTop()
	col, row := float64(x-left), float64(y-top)
	return r2.Vec{
		X: (col*2 + 1) * DotPixels,
		Y: (row*4 + 2) * DotPixels,
	}
}

func (m *Model) resize(width, height int) {
	cols := width - statsWidth - canvasStyle.GetHorizontalFrameSize() - 2
	rows := height - canvasStyle.GetVerticalFrameSize()
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}
	m.canvas = NewCanvas(cols, rows)
}

func (m *Model) step() {
	if !m.ctrl.Tick(m.Geometry()) {
		return
	}
	m.energy = appendCapped(m.energy, m.kinetic.Last())
	m.resting = appendCapped(m.resting, m.rest.Last())
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// draw rasterizes the current snapshot onto the canvas.
func (m *Model) draw() sim.Frame {
	m.canvas.Clear()
	frame := m.ctrl.Snapshot()
	dw, dh := m.canvas.Dots()
	for _, p := range frame.Particles {
		x := int(math.Round(p.X / 100 * float64(dw)))
		y := int(math.Round(p.Y / 100 * float64(dh)))
		m.canvas.Mark(x, y, !p.AtRest)
	}
	if !frame.Idle {
		px := int(frame.Pointer.X / DotPixels)
		py := int(frame.Pointer.Y / DotPixels)
		m.canvas.DrawLine(px-2, py, px+2, py)
		m.canvas.DrawLine(px, py-2, px, py+2)
	}
	return frame
}

func (m Model) View() string {
	frame := m.draw()
	active := lipgloss.NewStyle().Foreground(m.theme.Active)
	rest := lipgloss.NewStyle().Foreground(m.theme.Rest)
	canvasView := canvasStyle.Render(m.canvas.Render(active, rest))

	cfg := m.ctrl.Config()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case !m.running:
		s.WriteString(statusPaused.Render("PAUSED"))
	case frame.Idle:
		s.WriteString(statusIdle.Render("IDLE"))
	default:
		s.WriteString(statusRunning.Render("RUNNING"))
	}
	s.WriteString("\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(statsWidth-12), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("at rest") + SparklineChart(m.resting, statsWidth-16) + "\n\n")

	polarity := "attract"
	if cfg.MousePolarity > 0 {
		polarity = "repel"
	}
	rows := [][2]string{
		{"Tick", fmt.Sprintf("%d", frame.Tick)},
		{"Particles", fmt.Sprintf("%d", m.ctrl.Len())},
		{"Contacts", fmt.Sprintf("%d", m.ctrl.LastContacts())},
		{"Gravity", fmt.Sprintf("%.2f", cfg.Gravity)},
		{"Bounce", fmt.Sprintf("%.1f", cfg.BounceStrength)},
		{"Pointer", polarity},
		{"Theme", m.theme.Name},
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:pause R:reseed P:polarity\n↑↓:gravity +-:count B:bounce\nT:theme Q:quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Run starts the terminal view with mouse motion reporting enabled.
func Run(cfg config.Config, name string) error {
	p := tea.NewProgram(NewModel(cfg, name), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
