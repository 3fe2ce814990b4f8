package gaps

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// commentaryMsg carries advisor commentary for the roadmap.
type commentaryMsg struct {
	Commentary advisor.Commentary
}

// RoadmapScreen lists the learning roadmap for the target role.
type RoadmapScreen struct {
	env          *screen.Env
	items        []gap.RoadmapItem
	plan         []gap.Week
	commentary   advisor.Commentary
	expanded     map[int]bool
	cursor       int
	scrollOffset int
	weekly       bool
	enriching    bool
	spinner      spinner.Model
	status       string
	errMsg       string
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)

// NewRoadmap creates a new RoadmapScreen.
func NewRoadmap(env *screen.Env) *RoadmapScreen {
	s := &RoadmapScreen{
		env:      env,
		expanded: make(map[int]bool),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	records, err := env.Gaps()
	if err != nil {
		s.errMsg = "Pick a target role first."
		return s
	}
	s.items = gap.BuildRoadmap(env.Catalog(), records, env.Profile.HoursPerWeek)
	s.plan = gap.WeeklyPlan(s.items, gap.DefaultPlanWeeks)
	return s
}

func (s *RoadmapScreen) Init() tea.Cmd {
	return nil
}

func (s *RoadmapScreen) Title() string {
	if s.weekly {
		return "Weekly Plan"
	}
	return "Roadmap"
}

func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	if s.weekly {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "W", Description: "Roadmap"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Expand"},
		{Key: "A", Description: "Advice"},
		{Key: "W", Description: "Weekly plan"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case commentaryMsg:
		s.enriching = false
		s.commentary = msg.Commentary
		if len(msg.Commentary) == 0 {
			s.status = "No advice available right now."
		} else {
			s.status = fmt.Sprintf("Advice added for %d skills.", len(msg.Commentary))
			for i, it := range s.items {
				if _, ok := msg.Commentary[it.SkillID]; ok {
					s.expanded[i] = true
				}
			}
		}
		return s, nil

	case spinner.TickMsg:
		if !s.enriching {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *RoadmapScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.weekly {
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		} else if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.weekly {
			s.scrollOffset++
		} else if s.cursor < len(s.items)-1 {
			s.cursor++
		}
	case "enter", "space":
		if !s.weekly && len(s.items) > 0 {
			s.expanded[s.cursor] = !s.expanded[s.cursor]
		}
	case "w":
		if s.errMsg == "" {
			s.weekly = !s.weekly
			s.scrollOffset = 0
		}
	case "a":
		return s, s.enrich()
	case "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

// enrich asks the advisor for commentary on the top items.
func (s *RoadmapScreen) enrich() tea.Cmd {
	if s.enriching || len(s.items) == 0 || s.env.Advisor == nil {
		return nil
	}
	if !s.env.Advisor.Available() {
		s.status = "Advice needs an LLM provider."
		return nil
	}
	s.enriching = true
	s.status = ""
	env, items := s.env, s.items
	fetch := func() tea.Msg {
		ctx, cancel := env.AdvisorContext()
		defer cancel()
		return commentaryMsg{Commentary: env.Advisor.Enrich(ctx, items, env.EnrichLimit)}
	}
	return tea.Batch(fetch, s.spinner.Tick)
}

func (s *RoadmapScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render("\n\n" + dim.Render(s.errMsg))
	}
	if len(s.items) == 0 {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Render("\n\n" + lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("Every required skill meets its target."))
	}

	var lines []string
	switch {
	case s.enriching:
		lines = append(lines, "  "+s.spinner.View()+" Asking the advisor...", "")
	case s.status != "":
		lines = append(lines, "  "+dim.Render(s.status), "")
	}

	if s.weekly {
		lines = append(lines, s.renderWeekly()...)
		return scroll(lines, &s.scrollOffset, height)
	}

	cursorLine := 0
	for i, it := range s.items {
		if i == s.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, s.renderItem(i, it, width)...)
	}
	if cursorLine < s.scrollOffset {
		s.scrollOffset = cursorLine
	}
	if cursorLine >= s.scrollOffset+height {
		s.scrollOffset = cursorLine - height + 1
	}
	return scroll(lines, &s.scrollOffset, height)
}

func (s *RoadmapScreen) renderItem(i int, it gap.RoadmapItem, width int) []string {
	selected := i == s.cursor
	cursor := "  "
	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		cursor = "▸ "
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	head := fmt.Sprintf("  %s%2d. %s  %s  %s",
		cursor, it.Rank,
		nameStyle.Render(truncate(it.SkillName, 24)),
		lipgloss.NewStyle().Foreground(priorityColor(it.Priority)).Render(it.Priority.DisplayName()),
		dim.Render(fmt.Sprintf("%s > %s  ~%.0f weeks", gap.FormatLevel(it.Estimated), gap.FormatLevel(it.Target), it.WeeksToTarget)),
	)
	lines := []string{head}
	if !s.expanded[i] {
		return lines
	}

	indent := "        "
	lines = append(lines, indent+dim.Render("Stage: "+it.Stage.DisplayName()))
	for _, m := range it.Stage.Milestones() {
		lines = append(lines, indent+"  - "+m)
	}
	if len(it.Prerequisites) > 0 {
		lines = append(lines, indent+dim.Render("After: "+strings.Join(it.Prerequisites, ", ")))
	}
	if len(it.Resources) == 0 {
		lines = append(lines, indent+dim.Render("No curated resources."))
	}
	for _, r := range it.Resources {
		meta := r.Kind
		if r.Platform != "" {
			meta += ", " + r.Platform
		}
		if r.Duration != "" {
			meta += ", " + r.Duration
		}
		lines = append(lines, fmt.Sprintf("%s📘 %s %s", indent, r.Title, dim.Render("("+meta+")")))
	}
	if text, ok := s.commentary[it.SkillID]; ok {
		wrapped := lipgloss.NewStyle().Width(max(20, width-len(indent)-2)).Foreground(theme.Secondary).Render(text)
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, indent+l)
		}
	}
	return append(lines, "")
}

func (s *RoadmapScreen) renderWeekly() []string {
	heading := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var lines []string
	for _, w := range s.plan {
		lines = append(lines, "  "+heading.Render(fmt.Sprintf("Week %d", w.Number)))
		for _, f := range w.Focus {
			lines = append(lines, fmt.Sprintf("    %s %s",
				lipgloss.NewStyle().Foreground(priorityColor(f.Priority)).Render("●"),
				f.SkillName+dim.Render(fmt.Sprintf("  %s > %s, %s", gap.FormatLevel(f.Current), gap.FormatLevel(f.Target), f.Stage.DisplayName()))))
		}
		for _, d := range w.DailyTargets {
			lines = append(lines, "      "+dim.Render(d))
		}
		lines = append(lines, "")
	}
	return lines
}

// scroll clamps offset and returns the visible window of lines.
func scroll(lines []string, offset *int, height int) string {
	maxOffset := len(lines) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if *offset > maxOffset {
		*offset = maxOffset
	}
	end := *offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[*offset:end], "\n")
}
