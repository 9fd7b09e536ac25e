package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/driftfield/internal/config"
)

// CurrentEntry is the picker row that runs the resolved command-line config.
const CurrentEntry = "current"

var presetInfo = map[string]string{
	CurrentEntry: "flags and config file",
	"hero":   "defaults, gentle pull",
	"rain":   "gravity on",
	"zero_g": "no friction, full bounce",
	"sticky": "no bounce",
	"magnet": "wide attraction",
	"repel":  "pointer pushes away",
	"snow":   "many small drifting flakes",
}

var (
	pickTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Picker lists the presets and opens a live view on the chosen one. The
// first row runs the config it was built with.
type Picker struct {
	base    config.Config
	presets []string
	cursor  int
	live    *Model
	width   int
	height  int
}

func NewPicker(base config.Config) Picker {
	return Picker{base: base, presets: append([]string{CurrentEntry}, config.ListPresets()...)}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.width, p.height = size.Width, size.Height
	}
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p Picker) start() (tea.Model, tea.Cmd) {
	name := p.presets[p.cursor]
	cfg := p.base
	if name != CurrentEntry {
		sim, err := config.GetPreset(name)
		if err != nil {
			return p, nil
		}
		cfg.Sim = sim
	}
	live := NewModel(cfg, name)
	if p.width > 0 {
		live.resize(p.width, p.height)
	}
	p.live = &live
	return p, live.Init()
}

// Selected is the preset under the cursor.
func (p Picker) Selected() string { return p.presets[p.cursor] }

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("DRIFTFIELD") + "\n    " + pickSub.Render("pointer-driven particle field") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range p.presets {
		desc := presetInfo[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickSelected.Render(fmt.Sprintf("%-10s", name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickDim.Render(fmt.Sprintf("  %-10s", name)), pickDim.Render(desc)))
		}
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickDim.Render(" navigate  ") + pickKey.Render("enter") + pickDim.Render(" select  ") + pickKey.Render("q") + pickDim.Render(" quit") + "\n")
	return b.String()
}

// RunPicker starts the preset menu.
func RunPicker(base config.Config) error {
	_, err := tea.NewProgram(NewPicker(base), tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
