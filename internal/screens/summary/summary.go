package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// SkillResult is the outcome of one skill in a quiz run.
type SkillResult struct {
	SkillName string
	Skipped   bool
	Result    quiz.Result
	Before    float64
	After     float64
}

// Summary describes a finished quiz run.
type Summary struct {
	RoleName        string
	Skills          []SkillResult
	ReadinessBefore float64
	ReadinessAfter  float64
	Abandoned       bool
	SaveErr         string
}

// Totals returns the questions asked and answered correctly across skills.
func (s Summary) Totals() (asked, correct int) {
	for _, sr := range s.Skills {
		asked += sr.Result.Asked
		correct += sr.Result.Correct
	}
	return asked, correct
}

// SummaryScreen displays the quiz summary.
type SummaryScreen struct {
	summary *Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	title := "Quiz complete!"
	if sum.Abandoned {
		title = "Quiz ended early"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), title))
	b.WriteString("\n\n")

	asked, correct := sum.Totals()
	accuracy := 0.0
	if asked > 0 {
		accuracy = float64(correct) / float64(asked) * 100
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Questions: %d        Correct: %d        Accuracy: %.0f%%", asked, correct, accuracy)))
	b.WriteString("\n")

	if sum.RoleName != "" {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if sum.ReadinessAfter > sum.ReadinessBefore {
			style = lipgloss.NewStyle().Foreground(theme.Success)
		}
		b.WriteString(center(style,
			fmt.Sprintf("%s readiness: %.1f%% > %.1f%%", sum.RoleName, sum.ReadinessBefore, sum.ReadinessAfter)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Skills")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for _, sr := range sum.Skills {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderSkill(sr)))
		b.WriteString("\n")
	}

	if sum.Abandoned {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true),
			"Answers to the unfinished skill were not saved."))
	}
	if sum.SaveErr != "" {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Error), "Could not save: "+sum.SaveErr))
	}

	return b.String()
}

// renderSkill renders one skill line.
func renderSkill(sr SkillResult) string {
	if sr.Skipped {
		return lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %-24s  skipped: no questions available", sr.SkillName))
	}

	r := sr.Result
	change := gap.FormatLevel(sr.After)
	if gap.FormatLevel(sr.Before) != change {
		change = fmt.Sprintf("%s > %s", gap.FormatLevel(sr.Before), change)
	}
	note := ""
	if r.LowConfidence {
		note = "  low confidence"
	}
	line := fmt.Sprintf("  %-24s  %d/%d correct    estimate %s%s",
		sr.SkillName, r.Correct, r.Asked, change, note)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case sr.After > sr.Before:
		style = style.Foreground(theme.Success)
	case r.LowConfidence:
		style = style.Foreground(theme.Accent)
	}
	return style.Render(line)
}
