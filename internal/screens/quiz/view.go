package quiz

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	qz "github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.quitConfirm:
		return renderQuitConfirm(width)
	case s.phase == phaseLoading:
		return centered(width, theme.TextDim, "\n\n\n"+s.spinner.View()+" Preparing your quiz...")
	case s.phase == phaseFeedback:
		return s.renderFeedback(width)
	case s.phase == phaseDone:
		return ""
	}
	return s.renderQuestionView(width)
}

// renderQuestionView renders the active question.
func (s *QuizScreen) renderQuestionView(width int) string {
	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))

	q := s.question
	questionStyle := lipgloss.NewStyle().
		Width(min(width-8, 76)).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, questionStyle.Render(q.Prompt)))
	b.WriteString("\n\n")

	if q.Format == competency.FormatChoice {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))
	}

	if s.phase == phaseGrading {
		b.WriteString("\n\n")
		b.WriteString(centered(width, theme.TextDim, s.spinner.View()+" Grading..."))
	}
	return b.String()
}

// renderInfoLine renders the skill, question count and running estimate.
func (s *QuizScreen) renderInfoLine(width int) string {
	skillName := ""
	if s.index < len(s.items) {
		skillName = s.items[s.index].SkillName
	}
	estimate := 0.0
	if s.session != nil {
		estimate = s.session.Estimate()
	}

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Skill %d/%d: %s", s.index+1, len(s.items), skillName))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d  %s  est %s",
			s.number,
			lipgloss.NewStyle().Foreground(theme.Accent).Render(s.question.Tier.DisplayName()),
			gap.FormatLevel(estimate),
		))

	line := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + infoRight
	}
	return line + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))) +
		"\n\n"
}

// renderFeedback renders the grading result.
func (s *QuizScreen) renderFeedback(width int) string {
	fb := s.feedback

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))

	if fb.Correct {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Not quite"))
		if fb.CorrectAnswer != "" {
			b.WriteString("\n")
			b.WriteString(centered(width, theme.TextDim, "Expected: "+fb.CorrectAnswer))
		}
	}
	b.WriteString("\n\n")

	if s.question.Format == competency.FormatChoice {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
		b.WriteString("\n")
	}

	if fb.Explanation != "" {
		exp := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render(fb.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	if fb.State.Terminal() {
		msg := fmt.Sprintf("Skill done: estimate %s/10", gap.FormatLevel(fb.Estimate))
		if fb.State == qz.StateExhausted {
			msg += " (question bank ran out)"
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Bold(true).
			Render(msg))
		b.WriteString("\n\n")
	}

	b.WriteString(centered(width, theme.TextDim, "Press any key to continue..."))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("End quiz early?"))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.TextDim, "Skills you finished are saved. The current one is not."))
	b.WriteString("\n\n")
	b.WriteString(centered(width, theme.Success, "[Y] Yes, end quiz"))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.Primary, "[N] No, keep going"))
	return b.String()
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return centered(width, theme.Error,
		fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg))
}

func centered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render(text)
}
