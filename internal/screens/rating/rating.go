package rating

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// scaleLabels names each point of the rating scale.
var scaleLabels = map[int]string{
	1: "Aware",
	2: "Beginner",
	3: "Working",
	4: "Strong",
	5: "Expert",
}

type rowKind int

const (
	rowCategoryHeader rowKind = iota
	rowSkill
)

type row struct {
	kind     rowKind
	category string
	skill    competency.Skill
	target   float64
}

// RatingScreen lists the target role's skills grouped by category and
// records self ratings as they are entered.
type RatingScreen struct {
	env          *screen.Env
	roleName     string
	rows         []row
	cursor       int
	scrollOffset int
	status       string
	statusErr    bool
}

var _ screen.Screen = (*RatingScreen)(nil)
var _ screen.KeyHintProvider = (*RatingScreen)(nil)

// New creates a new RatingScreen for the selected role.
func New(env *screen.Env) *RatingScreen {
	s := &RatingScreen{env: env}
	role, ok := env.Role()
	if !ok {
		return s
	}
	s.roleName = role.Name
	s.rows = buildRows(env.Catalog(), role)

	for i, r := range s.rows {
		if r.kind == rowSkill {
			s.cursor = i
			break
		}
	}
	return s
}

// buildRows groups the role's skills by category in first-seen order.
func buildRows(cat *competency.Catalog, role competency.RoleProfile) []row {
	var order []string
	byCategory := make(map[string][]row)
	for _, req := range role.Requirements {
		sk, err := cat.Skill(req.SkillID)
		if err != nil {
			continue
		}
		c := sk.Category
		if c == "" {
			c = "General"
		}
		if _, seen := byCategory[c]; !seen {
			order = append(order, c)
		}
		byCategory[c] = append(byCategory[c], row{kind: rowSkill, category: c, skill: sk, target: req.Level})
	}

	var rows []row
	for _, c := range order {
		rows = append(rows, row{kind: rowCategoryHeader, category: c})
		rows = append(rows, byCategory[c]...)
	}
	return rows
}

func (s *RatingScreen) Init() tea.Cmd {
	return nil
}

func (s *RatingScreen) Title() string {
	return "Self-Assessment"
}

// KeyHints returns the key binding hints for the footer.
func (s *RatingScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "1-5 ←→", Description: "Rate"},
		{Key: "Tab", Description: "Category"},
		{Key: "Esc", Description: "Done"},
	}
}

func (s *RatingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(s.rows) == 0 {
		return s, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		s.moveCursor(-1)
	case "down", "j":
		s.moveCursor(1)
	case "tab":
		s.nextCategory()
	case "shift+tab":
		s.prevCategory()
	case "left", "h":
		s.nudge(-1)
	case "right", "l":
		s.nudge(1)
	case "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	default:
		if len(key) == 1 && key[0] >= '0'+assessment.ScaleMin && key[0] <= '0'+assessment.ScaleMax {
			s.rate(int(key[0] - '0'))
		}
	}
	return s, nil
}

// nudge moves the current rating by delta, starting unrated skills at the
// bottom of the scale.
func (s *RatingScreen) nudge(delta int) {
	r := s.rows[s.cursor]
	current, ok := s.env.Profile.Rating(r.skill.ID)
	if !ok {
		s.rate(assessment.ScaleMin)
		return
	}
	next := current.Value + delta
	if next < assessment.ScaleMin || next > assessment.ScaleMax {
		return
	}
	s.rate(next)
}

// rate records and saves a rating for the skill under the cursor.
func (s *RatingScreen) rate(value int) {
	r := s.rows[s.cursor]
	if r.kind != rowSkill {
		return
	}
	if err := s.env.Aggregator.RecordSelfRating(s.env.Profile, r.skill.ID, value); err != nil {
		s.status, s.statusErr = err.Error(), true
		return
	}
	if err := s.env.Save(context.Background()); err != nil {
		s.status, s.statusErr = fmt.Sprintf("Could not save: %v", err), true
		return
	}
	s.status = fmt.Sprintf("%s rated %d (%s)", r.skill.Name, value, scaleLabels[value])
	s.statusErr = false
}

func (s *RatingScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Pick a target role first.")
	}

	// Reserve the intro line and the status line.
	listHeight := height - 4
	s.adjustScroll(listHeight)

	var lines []string
	lines = append(lines, lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  How confident are you in each %s skill? 1 = aware, 5 = expert.", s.roleName)))

	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= listHeight {
			break
		}
		switch r.kind {
		case rowCategoryHeader:
			lines = append(lines, renderCategoryHeader(r.category, width))
		case rowSkill:
			lines = append(lines, s.renderSkillRow(r, i == s.cursor, width))
		}
		visible++
	}

	if s.status != "" {
		color := theme.Success
		if s.statusErr {
			color = theme.Error
		}
		lines = append(lines, "", lipgloss.NewStyle().Foreground(color).Render("  "+s.status))
	}

	return strings.Join(lines, "\n")
}

// moveCursor moves the cursor by delta, skipping category headers.
func (s *RatingScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowSkill {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextCategory jumps to the first skill of the next category.
func (s *RatingScreen) nextCategory() {
	current := s.rows[s.cursor].category
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowSkill && s.rows[i].category != current {
			s.cursor = i
			return
		}
	}
}

// prevCategory jumps to the first skill of the previous category.
func (s *RatingScreen) prevCategory() {
	current := s.rows[s.cursor].category
	prev := ""
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].kind == rowSkill && s.rows[i].category != current {
			prev = s.rows[i].category
			break
		}
	}
	if prev == "" {
		return
	}
	for i, r := range s.rows {
		if r.kind == rowSkill && r.category == prev {
			s.cursor = i
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *RatingScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	// Keep the category header above the cursor in view.
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowCategoryHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func renderCategoryHeader(category string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(category))
}

// renderSkillRow renders a skill with its rating dots and current estimate.
func (s *RatingScreen) renderSkillRow(r row, selected bool, width int) string {
	rating, rated := s.env.Profile.Rating(r.skill.ID)

	dots := strings.Repeat("○", assessment.ScaleMax)
	label := "not rated"
	if rated {
		dots = strings.Repeat("●", rating.Value) + strings.Repeat("○", assessment.ScaleMax-rating.Value)
		label = scaleLabels[rating.Value]
	}

	estimate := "  -"
	if est, err := s.env.Aggregator.Estimate(s.env.Profile, r.skill.ID); err == nil {
		estimate = gap.FormatLevel(est.Value)
	}

	nameWidth := width - 48
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := []rune(r.skill.Name)
	if len(name) > nameWidth {
		name = append(name[:nameWidth-1], '…')
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	dotStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if rated {
		dotStyle = lipgloss.NewStyle().Foreground(theme.ArcadeYellow)
	}
	cursor := "  "
	if selected {
		cursor = "▸ "
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}

	return fmt.Sprintf("  %s%s  %s %-9s  %s",
		cursor,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, string(name))),
		dotStyle.Render(dots),
		label,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(
			fmt.Sprintf("est %s / need %s", estimate, gap.FormatLevel(r.target))),
	)
}
