package roles

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// row is one role with its readiness for the current profile.
type row struct {
	role      competency.RoleProfile
	readiness float64
}

// RolesScreen lists the catalog roles.
type RolesScreen struct {
	env          *screen.Env
	rows         []row
	cursor       int
	scrollOffset int
}

var _ screen.Screen = (*RolesScreen)(nil)
var _ screen.KeyHintProvider = (*RolesScreen)(nil)
var _ screen.Resumer = (*RolesScreen)(nil)

// New creates a new RolesScreen with the cursor on the selected role.
func New(env *screen.Env) *RolesScreen {
	s := &RolesScreen{env: env}
	s.load()
	for i, r := range s.rows {
		if r.role.ID == env.Profile.SelectedRole {
			s.cursor = i
			break
		}
	}
	return s
}

func (s *RolesScreen) load() {
	roles := s.env.Catalog().ListRoles()
	s.rows = make([]row, 0, len(roles))
	for _, role := range roles {
		r := row{role: role}
		if records, err := gap.ComputeGaps(s.env.Aggregator, s.env.Profile, role.ID); err == nil {
			r.readiness = gap.Readiness(records)
		}
		s.rows = append(s.rows, r)
	}
}

func (s *RolesScreen) Init() tea.Cmd {
	return nil
}

// Resume reloads readiness after the detail screen closes.
func (s *RolesScreen) Resume() tea.Cmd {
	s.load()
	return nil
}

func (s *RolesScreen) Title() string {
	return "Target Role"
}

func (s *RolesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RolesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.rows)-1 {
				s.cursor++
			}
		case "enter":
			if len(s.rows) == 0 {
				return s, nil
			}
			detail := newRoleDetail(s.env, s.rows[s.cursor].role)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *RolesScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  The catalog has no roles.")
	}

	// Each role takes two lines: name and description.
	visibleRows := height / 2
	s.adjustScroll(visibleRows)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && i < s.scrollOffset+visibleRows; i++ {
		lines = append(lines, s.renderRow(s.rows[i], i == s.cursor, width)...)
	}
	return strings.Join(lines, "\n")
}

// adjustScroll keeps the cursor inside the visible window.
func (s *RolesScreen) adjustScroll(visible int) {
	if visible <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+visible {
		s.scrollOffset = s.cursor - visible + 1
	}
}

func (s *RolesScreen) renderRow(r row, selected bool, width int) []string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	mark := " "
	if r.role.ID == s.env.Profile.SelectedRole {
		mark = "●"
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}

	nameWidth := width - 34
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := truncate(r.role.Name, nameWidth)

	meta := fmt.Sprintf("%2d skills  %5.1f%% ready", len(r.role.Requirements), r.readiness)
	line := fmt.Sprintf("  %s%s %s  %s",
		cursor,
		lipgloss.NewStyle().Foreground(theme.Success).Render(mark),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(meta),
	)
	desc := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render("      " + truncate(r.role.Description, width-10))
	return []string{line, desc}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
