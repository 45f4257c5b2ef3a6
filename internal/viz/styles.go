package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors of styled output.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Value   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:    "default",
		Primary: lipgloss.Color("#00ffff"),
		Muted:   lipgloss.Color("#666688"),
		Value:   lipgloss.Color("#00ccff"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Value:   lipgloss.Color("#dddddd"),
		Success: lipgloss.Color("#ffffff"),
		Warning: lipgloss.Color("#cccccc"),
		Error:   lipgloss.Color("#ffffff"),
	}
)

var themes = []Theme{ThemeDefault, ThemeMono}

// Styles used across the CLI and the live view. SetTheme rebuilds them.
var (
	Title       lipgloss.Style
	Subtle      lipgloss.Style
	MetricLabel lipgloss.Style
	MetricValue lipgloss.Style
	KeyHint     lipgloss.Style
	HeaderStyle lipgloss.Style
	Panel       lipgloss.Style
	WarnStyle   lipgloss.Style
	ErrorStyle  lipgloss.Style
	StatusOK    lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style

	CurrentTheme Theme
)

func init() { applyTheme(ThemeDefault) }

func applyTheme(t Theme) {
	CurrentTheme = t
	Title = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	Subtle = lipgloss.NewStyle().Foreground(t.Muted)
	MetricLabel = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	MetricValue = lipgloss.NewStyle().Foreground(t.Value).Bold(true)
	KeyHint = lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Muted)
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
	WarnStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	StatusOK = lipgloss.NewStyle().Bold(true).Foreground(t.Success)

	SparkHigh = lipgloss.NewStyle().Foreground(t.Success)
	SparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	SparkLow = lipgloss.NewStyle().Foreground(t.Error)
}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// SetTheme reports false for an unknown name.
func SetTheme(name string) bool {
	for _, t := range themes {
		if t.Name == name {
			applyTheme(t)
			return true
		}
	}
	return false
}

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	for i, t := range themes {
		if t.Name == CurrentTheme.Name {
			applyTheme(themes[(i+1)%len(themes)])
			return
		}
	}
}

// ProgressBar renders fraction in [0,1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if fraction > 0.8 {
		return SparkHigh.Render(bar)
	} else if fraction > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}
