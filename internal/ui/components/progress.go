package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a level in [0, 1], with an
// optional marker for a target level.
type ProgressBar struct {
	Label       string
	Percent     float64
	Marker      float64
	ShowPercent bool
	Width       int
	Fill        color.Color
}

// NewProgressBar creates a progress bar without a marker.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		Marker:      -1,
		ShowPercent: showPercent,
		Width:       width,
		Fill:        theme.Secondary,
	}
}

// NewLevelBar creates a bar for an estimate with a target marker.
func NewLevelBar(label string, estimate, target float64, width int) ProgressBar {
	p := NewProgressBar(label, estimate, false, width)
	p.Marker = target
	if estimate >= target {
		p.Fill = theme.Success
	}
	return p
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := cells(p.Percent, barWidth)
	marker := -1
	if p.Marker >= 0 {
		marker = cells(p.Marker, barWidth) - 1
		if marker < 0 {
			marker = 0
		}
	}

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	filledStyle := lipgloss.NewStyle().Background(fill)
	emptyStyle := lipgloss.NewStyle().Background(theme.Border)
	markerStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		style := emptyStyle
		if i < filled {
			style = filledStyle
		}
		if i == marker {
			bar.WriteString(style.Inherit(markerStyle).Render("│"))
			continue
		}
		bar.WriteString(style.Render(" "))
	}
	result += bar.String()

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

func cells(v float64, width int) int {
	n := int(float64(width)*v + 0.5)
	if n > width {
		return width
	}
	if n < 0 {
		return 0
	}
	return n
}
