package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the terminal view. Active and Rest colour
// particles by their rest flag, standing in for the 0.8 / 0.4 opacity hint.
type Theme struct {
	Name    string
	Active  lipgloss.Color
	Rest    lipgloss.Color
	Pointer lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:    "ocean",
		Active:  lipgloss.Color("#7dd3fc"),
		Rest:    lipgloss.Color("#336699"),
		Pointer: lipgloss.Color("#f472b6"),
		Accent:  lipgloss.Color("#00ffff"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
	}

	ThemeEmber = Theme{
		Name:    "ember",
		Active:  lipgloss.Color("#feca57"),
		Rest:    lipgloss.Color("#8b5a3c"),
		Pointer: lipgloss.Color("#ff4757"),
		Accent:  lipgloss.Color("#ff6b6b"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Active:  lipgloss.Color("#00ff00"),
		Rest:    lipgloss.Color("#005500"),
		Pointer: lipgloss.Color("#88ff88"),
		Accent:  lipgloss.Color("#00cc00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Active:  lipgloss.Color("#ffffff"),
		Rest:    lipgloss.Color("#666666"),
		Pointer: lipgloss.Color("#0088ff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
	}

	Themes = []Theme{
		ThemeOcean,
		ThemeEmber,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to ocean.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
