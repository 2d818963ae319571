package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	// LCD mimics a green backlit character display. LCDOff is the same panel
	// with the backlight switched off.
	LCD = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("#2f4f2f")).
		Background(lipgloss.Color("#7fbf3f")).
		Foreground(lipgloss.Color("#102010"))

	LCDOff = LCD.
		Background(lipgloss.Color("#1f2f1f")).
		Foreground(lipgloss.Color("#3f5f3f"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Armed = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ff4444"))

	Safe = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))

	RedOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff2222"))
	YellowOn = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	LEDOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffee66"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#aa7700"))
)

// LED draws a round indicator lit or dark.
func LED(on bool, lit lipgloss.Style) string {
	if on {
		return lit.Render("●")
	}
	return LEDOff.Render("○")
}

// LevelBar renders an 8-bit output level as a bar of the given width.
func LevelBar(level uint8, width int) string {
	if width < 1 {
		return ""
	}
	filled := int(level) * width / 255
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return YellowOn.Render(bar)
}

// Sparkline renders the last width levels, oldest on the left.
func Sparkline(levels []uint8, width int) string {
	if len(levels) == 0 || width < 1 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(levels) > width {
		levels = levels[len(levels)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var b strings.Builder
	for _, l := range levels {
		idx := int(l) * (len(chars) - 1) / 255
		c := string(chars[idx])
		switch {
		case l > 180:
			b.WriteString(SparkHigh.Render(c))
		case l > 80:
			b.WriteString(SparkMid.Render(c))
		default:
			b.WriteString(SparkLow.Render(c))
		}
	}
	return b.String()
}
