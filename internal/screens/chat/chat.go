package chat

import (
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/components"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

const greeting = "Hi! Ask me about your target role, what to learn next, or how to prepare for interviews."

// replyMsg carries the advisor's answer.
type replyMsg struct {
	Reply advisor.Reply
}

type message struct {
	fromUser bool
	text     string
	source   advisor.Source
}

// ChatScreen is a conversation with the career advisor.
type ChatScreen struct {
	env          *screen.Env
	messages     []message
	input        components.TextInput
	spinner      spinner.Model
	waiting      bool
	scrollOffset int
	follow       bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.BackInterceptor = (*ChatScreen)(nil)

// New creates a new ChatScreen.
func New(env *screen.Env) *ChatScreen {
	return &ChatScreen{
		env:      env,
		messages: []message{{text: greeting, source: advisor.SourceFallback}},
		input:    components.NewTextInput("Ask the advisor...", 500, 60),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		follow:   true,
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return "Advisor"
}

// InterceptsBack lets Esc clear a draft before it leaves the screen.
func (s *ChatScreen) InterceptsBack() bool {
	return s.input.Value() != ""
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.waiting = false
		s.messages = append(s.messages, message{text: msg.Reply.Text, source: msg.Reply.Source})
		s.follow = true
		return s, nil

	case spinner.TickMsg:
		if !s.waiting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if s.input.Value() != "" {
				s.input.Reset()
				return s, nil
			}
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "pgup":
			s.follow = false
			s.scrollOffset -= 5
			if s.scrollOffset < 0 {
				s.scrollOffset = 0
			}
			return s, nil
		case "pgdown":
			s.scrollOffset += 5
			return s, nil
		case "enter":
			return s, s.send()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// send asks the advisor with the user's top gaps as context.
func (s *ChatScreen) send() tea.Cmd {
	text := s.input.Value()
	if text == "" || s.waiting || s.env.Advisor == nil {
		return nil
	}
	s.messages = append(s.messages, message{fromUser: true, text: text})
	s.input.Reset()
	s.waiting = true
	s.follow = true

	contextText := ""
	if role, ok := s.env.Role(); ok {
		if records, err := s.env.Gaps(); err == nil {
			contextText = advisor.GapContext(role.Name, records)
		}
	}
	env := s.env
	ask := func() tea.Msg {
		ctx, cancel := env.AdvisorContext()
		defer cancel()
		return replyMsg{Reply: env.Advisor.Chat(ctx, text, contextText)}
	}
	return tea.Batch(ask, s.spinner.Tick)
}

func (s *ChatScreen) View(width, height int) string {
	bodyWidth := width - 8
	if bodyWidth < 20 {
		bodyWidth = 20
	}

	var lines []string
	for _, m := range s.messages {
		lines = append(lines, renderMessage(m, bodyWidth)...)
		lines = append(lines, "")
	}
	if s.waiting {
		lines = append(lines, "  "+s.spinner.View()+" thinking...")
	}

	// Two lines for the input and its separator.
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	maxOffset := len(lines) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.follow || s.scrollOffset > maxOffset {
		s.scrollOffset = maxOffset
	}
	end := s.scrollOffset + visible
	if end > len(lines) {
		end = len(lines)
	}
	window := lines[s.scrollOffset:end]
	for len(window) < visible {
		window = append(window, "")
	}

	sep := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width))
	return strings.Join(window, "\n") + "\n" + sep + "\n  " + s.input.View()
}

func renderMessage(m message, width int) []string {
	var label string
	var style lipgloss.Style
	switch {
	case m.fromUser:
		label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("You")
		style = lipgloss.NewStyle().Foreground(theme.Text)
	case m.source == advisor.SourceAI:
		label = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Advisor")
		style = lipgloss.NewStyle().Foreground(theme.Text)
	default:
		label = lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Advisor") +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(" (built-in)")
		style = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	out := []string{"  " + label}
	for _, l := range strings.Split(style.Width(width).Render(m.text), "\n") {
		out = append(out, "    "+l)
	}
	return out
}
