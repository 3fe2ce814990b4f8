package roles

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/ui/components"
	"github.com/abhisek/skillforge/internal/ui/layout"
	"github.com/abhisek/skillforge/internal/ui/theme"
)

// RoleDetailScreen shows a role's requirements against the profile and
// lets the user pick it as the target.
type RoleDetailScreen struct {
	env     *screen.Env
	role    competency.RoleProfile
	records []gap.Record
	errMsg  string
}

var _ screen.Screen = (*RoleDetailScreen)(nil)
var _ screen.KeyHintProvider = (*RoleDetailScreen)(nil)

func newRoleDetail(env *screen.Env, role competency.RoleProfile) *RoleDetailScreen {
	d := &RoleDetailScreen{env: env, role: role}
	records, err := gap.ComputeGaps(env.Aggregator, env.Profile, role.ID)
	if err != nil {
		d.errMsg = err.Error()
	}
	d.records = records
	return d
}

func (d *RoleDetailScreen) Init() tea.Cmd { return nil }
func (d *RoleDetailScreen) Title() string { return d.role.Name }

func (d *RoleDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Set as target"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *RoleDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		if err := d.env.SelectRole(context.Background(), d.role.ID); err != nil {
			d.errMsg = err.Error()
			return d, nil
		}
		return d, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return d, nil
}

func (d *RoleDetailScreen) View(width, height int) string {
	contentWidth := width - 8
	if contentWidth > 76 {
		contentWidth = 76
	}

	var b strings.Builder

	title := d.role.Name
	if d.role.ID == d.env.Profile.SelectedRole {
		title += "  (current target)"
	}
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  " + title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %.1f%% ready", gap.Readiness(d.records))))
	b.WriteString("\n\n")

	if d.role.Description != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(d.role.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  Requirements"))
	b.WriteString("\n")

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	nameWidth := 24
	barWidth := contentWidth - nameWidth - 18
	if barWidth < 10 {
		barWidth = 10
	}
	for _, r := range d.records {
		icon := "○"
		style := dimStyle
		if r.Strength {
			icon = "●"
			style = lipgloss.NewStyle().Foreground(theme.Success)
		}
		bar := components.NewLevelBar("", r.Estimated, r.Target, barWidth)
		b.WriteString(fmt.Sprintf("  %s %s %s  %s",
			style.Render(icon),
			lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("%-*s", nameWidth, truncate(r.SkillName, nameWidth))),
			bar.View(),
			dimStyle.Render(fmt.Sprintf("%s / %s", gap.FormatLevel(r.Estimated), gap.FormatLevel(r.Target))),
		))
		b.WriteString("\n")
	}

	if d.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + d.errMsg))
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
