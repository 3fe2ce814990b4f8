package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// historyLimit caps how many sessions are loaded.
const historyLimit = 50

type historyLoadedMsg struct {
	Sessions []store.QuizSessionEvent
	Err      error
}

// HistoryScreen displays finished quiz sessions for the profile.
type HistoryScreen struct {
	env      *screen.Env
	sessions []store.QuizSessionEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{
		env:      env,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events, name := s.env.Events, s.env.Profile.Name
	return func() tea.Msg {
		if events == nil {
			return historyLoadedMsg{}
		}
		sessions, err := events.QuizSessions(context.Background(), name, "", store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Take one from the menu!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-20s  %d/%d correct  est %s",
			prefix, sess.Timestamp.Local().Format("Jan 02, 2006"), s.skillName(sess.SkillID),
			sess.Correct, sess.Asked, gap.FormatLevel(sess.Estimate))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s, confidence %.0f%%", stateLabel(sess.State), sess.Confidence*100)
			if sess.LowConfidence {
				detail += ", low confidence"
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(stateColor(sess.State)).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *HistoryScreen) skillName(id string) string {
	if sk, err := s.env.Catalog().Skill(id); err == nil {
		return sk.Name
	}
	return id
}

func stateLabel(state string) string {
	switch quiz.State(state) {
	case quiz.StateConverged:
		return "Converged"
	case quiz.StateExhausted:
		return "Question bank ran out"
	default:
		return state
	}
}

func stateColor(state string) color.Color {
	switch quiz.State(state) {
	case quiz.StateConverged:
		return theme.Success
	case quiz.StateExhausted:
		return theme.Accent
	default:
		return theme.TextDim
	}
}
