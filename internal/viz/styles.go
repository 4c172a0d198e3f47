package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the styles derived from a theme.
type Palette struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
	Panel  lipgloss.Style
}

// Styles builds the palette of the current theme.
func Styles() Palette {
	t := CurrentTheme
	return Palette{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label: lipgloss.NewStyle().Foreground(t.Muted),
		Value: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Muted: lipgloss.NewStyle().Foreground(t.Muted),
		Good:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Warn:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Bad:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline samples values down to width characters. It is unstyled so
// callers can color it.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		k := int(float64(i) * step)
		if k >= len(values) {
			break
		}
		idx := int((values[k] - lo) / span * float64(len(sparkChars)-1))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// KeyValue renders aligned label/value rows.
func KeyValue(rows [][2]string) string {
	p := Styles()
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(p.Label.Render(r[0] + strings.Repeat(" ", width-lipgloss.Width(r[0])+2)))
		b.WriteString(p.Value.Render(r[1]))
		b.WriteByte('\n')
	}
	return b.String()
}
