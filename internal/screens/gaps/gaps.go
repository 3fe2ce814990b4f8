package gaps

import (
	"fmt"
	"image/color"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/components"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// GapsScreen shows the gap report for the target role.
type GapsScreen struct {
	env          *screen.Env
	roleName     string
	records      []gap.Record
	summary      gap.Summary
	errMsg       string
	scrollOffset int
}

var _ screen.Screen = (*GapsScreen)(nil)
var _ screen.KeyHintProvider = (*GapsScreen)(nil)

// New creates a new GapsScreen.
func New(env *screen.Env) *GapsScreen {
	s := &GapsScreen{env: env}
	s.load()
	return s
}

func (s *GapsScreen) load() {
	role, ok := s.env.Role()
	if !ok {
		s.errMsg = "Pick a target role first."
		return
	}
	records, err := s.env.Gaps()
	if err != nil {
		s.errMsg = err.Error()
		return
	}
	s.roleName = role.Name
	s.records = records
	s.summary = gap.Summarize(records)
}

func (s *GapsScreen) Init() tea.Cmd {
	return nil
}

func (s *GapsScreen) Title() string {
	return "Gap Report"
}

func (s *GapsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Roadmap"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *GapsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			s.scrollOffset++
		case "r":
			if s.errMsg != "" {
				return s, nil
			}
			next := NewRoadmap(s.env)
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *GapsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n" + s.errMsg)
	}

	return scroll(s.renderLines(width), &s.scrollOffset, height)
}

func (s *GapsScreen) renderLines(width int) []string {
	heading := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var lines []string
	lines = append(lines,
		"  "+heading.Render(s.roleName),
		fmt.Sprintf("  Readiness %s   %s",
			lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(fmt.Sprintf("%.1f%%", s.summary.Readiness)),
			dim.Render(s.summary.Timeline)),
		"",
	)

	if len(s.summary.ImmediateActions) > 0 {
		lines = append(lines, "  "+heading.Render("Next steps"))
		for _, a := range s.summary.ImmediateActions {
			lines = append(lines, fmt.Sprintf("    • %s %s", a.Text, dim.Render("("+a.Effort+" effort)")))
		}
		lines = append(lines, "")
	}

	barWidth := width - 46
	if barWidth < 10 {
		barWidth = 10
	}
	lines = append(lines, "  "+heading.Render("Skills"))
	for _, r := range s.records {
		lines = append(lines, renderRecord(r, barWidth))
	}
	if s.summary.StrengthCount > 0 {
		lines = append(lines, "", "  "+dim.Render(fmt.Sprintf("%d of %d skills already meet the target.", s.summary.StrengthCount, len(s.records))))
	}
	return lines
}

func renderRecord(r gap.Record, barWidth int) string {
	bar := components.NewLevelBar("", r.Estimated, r.Target, barWidth)
	status := lipgloss.NewStyle().Foreground(theme.Success).Render("✓ strength")
	if !r.Strength {
		status = lipgloss.NewStyle().Foreground(priorityColor(r.Priority)).
			Render(fmt.Sprintf("gap %s %s", gap.FormatLevel(r.Gap), r.Priority.DisplayName()))
	}
	return fmt.Sprintf("  %2d. %-18s %s  %s",
		r.Rank, truncate(r.SkillName, 18), bar.View(), status)
}

func priorityColor(p gap.Priority) color.Color {
	switch p {
	case gap.PriorityHigh:
		return theme.PriorityHigh
	case gap.PriorityMedium:
		return theme.PriorityMedium
	default:
		return theme.PriorityLow
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
