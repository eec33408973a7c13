package theme

import "github.com/charmbracelet/lipgloss"

var (
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	Header = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Cell   = lipgloss.NewStyle().Foreground(Text)
	Muted  = lipgloss.NewStyle().Foreground(Subtext0)
	Rule   = lipgloss.NewStyle().Foreground(Surface1)
)

// Level colors a 1-5 stress level, calm green through high red.
func Level(level int) lipgloss.Style {
	switch {
	case level <= 2:
		return Cell.Foreground(Green)
	case level == 3:
		return Cell.Foreground(Yellow)
	case level == 4:
		return Cell.Foreground(Peach)
	default:
		return Cell.Foreground(Red).Bold(true)
	}
}
