package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/screens/chat"
	"github.com/abhisek/skillforge/internal/screens/gaps"
	"github.com/abhisek/skillforge/internal/screens/history"
	quizscreen "github.com/abhisek/skillforge/internal/screens/quiz"
	"github.com/abhisek/skillforge/internal/screens/rating"
	"github.com/abhisek/skillforge/internal/screens/roles"
	"github.com/abhisek/skillforge/internal/ui/components"
)

// Menu entries, in display order.
const (
	itemRole = iota
	itemRate
	itemQuiz
	itemGaps
	itemRoadmap
	itemHistory
	itemAdvisor
	itemExit
)

// needsRole lists the entries that stay disabled until a role is selected.
var needsRole = []int{itemRate, itemQuiz, itemGaps, itemRoadmap}

// HomeScreen is the main menu with the profile dashboard.
type HomeScreen struct {
	env    *screen.Env
	menu   components.Menu
	stats  stats
	mascot MascotVariant
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env *screen.Env) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	items := []components.MenuItem{
		itemRole:    {Label: "TARGET ROLE", Action: push(func() screen.Screen { return roles.New(env) })},
		itemRate:    {Label: "SELF-ASSESS", Action: push(func() screen.Screen { return rating.New(env) })},
		itemQuiz:    {Label: "TAKE QUIZ", Action: push(func() screen.Screen { return quizscreen.New(env) })},
		itemGaps:    {Label: "GAP REPORT", Action: push(func() screen.Screen { return gaps.New(env) })},
		itemRoadmap: {Label: "ROADMAP", Action: push(func() screen.Screen { return gaps.NewRoadmap(env) })},
		itemHistory: {Label: "HISTORY", Action: push(func() screen.Screen { return history.New(env) })},
		itemAdvisor: {Label: "ADVISOR", Action: push(func() screen.Screen { return chat.New(env) })},
		itemExit:    {Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	}

	h := &HomeScreen{
		env:  env,
		menu: components.NewMenu(items),
	}
	h.refresh()
	return h
}

// refresh recomputes the dashboard from the profile.
func (h *HomeScreen) refresh() {
	st := stats{}
	if role, ok := h.env.Role(); ok {
		st.hasRole = true
		st.roleName = role.Name
		st.required = len(role.Requirements)
		for _, id := range role.SkillIDs() {
			if _, rated := h.env.Profile.Rating(id); rated {
				st.rated++
			}
			if len(h.env.Profile.Responses(id)) > 0 {
				st.quizzed++
			}
		}
		st.readiness, _ = h.env.Readiness()
	}
	h.stats = st
	h.mascot = variantFor(st.hasRole, st.readiness)

	for _, i := range needsRole {
		h.menu.SetDisabled(i, !st.hasRole)
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume refreshes the dashboard after a sub-screen closes.
func (h *HomeScreen) Resume() tea.Cmd {
	h.refresh()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 34 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot, cw))
	}
	sections = append(sections, renderStatsBar(h.stats, cw, compact))
	if h.env.Advisor != nil && !h.env.Advisor.Available() {
		sections = append(sections, renderLLMBanner(cw))
	}

	labels := h.menu.Labels()
	disabled := h.menu.Disabled()
	if termHeight < 40 {
		sections = append(sections, renderArcadeMenuCompact(labels, h.menu.Selected, cw, disabled))
	} else {
		sections = append(sections, renderArcadeMenu(labels, h.menu.Selected, cw, disabled))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
