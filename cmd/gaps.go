package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/spf13/cobra"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Show skill gaps against the target role",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, role, records, err := computeGaps(cmd, d)
		if err != nil {
			return err
		}

		fmt.Printf("%s: gap analysis for %s\n\n", p.Name, role.Name)
		fmt.Printf("%4s  %-28s  %7s  %7s  %5s  %8s  %s\n", "Rank", "Skill", "Current", "Target", "Gap", "Priority", "")
		fmt.Println(strings.Repeat("─", 80))
		for _, r := range records {
			status := ""
			if r.Strength {
				status = "strength"
				if r.Surplus > 0 {
					status = fmt.Sprintf("strength (+%s)", gap.FormatLevel(r.Surplus))
				}
			}
			fmt.Printf("%4d  %-28s  %7s  %7s  %5s  %8s  %s\n",
				r.Rank, truncate(r.SkillName, 28), gap.FormatLevel(r.Estimated), gap.FormatLevel(r.Target),
				gap.FormatLevel(r.Gap), r.Priority.DisplayName(), status)
		}

		sum := gap.Summarize(records)
		fmt.Printf("\nReadiness: %.1f%%   Strengths: %d/%d   Timeline: %s\n",
			sum.Readiness, sum.StrengthCount, len(records), sum.Timeline)
		if len(sum.ImmediateActions) > 0 {
			fmt.Println("\nNext steps:")
			for _, a := range sum.ImmediateActions {
				fmt.Printf("  - %s (effort: %s)\n", a.Text, a.Effort)
			}
		}
		return nil
	},
}

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Build a learning roadmap for the target role",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, role, records, err := computeGaps(cmd, d)
		if err != nil {
			return err
		}
		items := gap.BuildRoadmap(d.catalog, records, p.HoursPerWeek)
		if len(items) == 0 {
			fmt.Printf("No gaps for %s. You meet every requirement.\n", role.Name)
			return nil
		}

		var commentary advisor.Commentary
		if withAdvice, _ := cmd.Flags().GetBool("advice"); withAdvice {
			ctx, cancel := d.advisorContext(commandContext(cmd))
			commentary = d.advisor.Enrich(ctx, items, d.cfg.Advisor.EnrichLimit)
			cancel()
		}

		fmt.Printf("Roadmap to %s\n\n", role.Name)
		for _, it := range items {
			fmt.Printf("%d. %s  %s → %s  [%s priority, %s]\n",
				it.Rank, it.SkillName, gap.FormatLevel(it.Estimated), gap.FormatLevel(it.Target),
				it.Priority.DisplayName(), it.Stage.DisplayName())
			if len(it.Prerequisites) > 0 {
				fmt.Printf("   after: %s\n", strings.Join(it.Prerequisites, ", "))
			}
			fmt.Printf("   about %.1f weeks\n", it.WeeksToTarget)
			for _, r := range it.Resources {
				fmt.Printf("   - %s\n", formatResource(r))
			}
			if c := commentary[it.SkillID]; c != "" {
				fmt.Printf("   Advisor: %s\n", c)
			}
			fmt.Println()
		}

		fmt.Printf("Study order: %s\n", strings.Join(gap.StudyOrder(d.catalog, items), " → "))

		weeks, _ := cmd.Flags().GetInt("weeks")
		plan := gap.WeeklyPlan(items, weeks)
		if len(plan) > 0 {
			fmt.Println("\nWeekly plan:")
			for _, w := range plan {
				var focus []string
				for _, f := range w.Focus {
					focus = append(focus, f.SkillName)
				}
				if len(focus) == 0 {
					focus = []string{"review and practice"}
				}
				fmt.Printf("  Week %d: %s\n", w.Number, strings.Join(focus, ", "))
			}
		}
		return nil
	},
}

// computeGaps loads the profile and ranks its gaps for the target role.
func computeGaps(cmd *cobra.Command, d *deps) (*profile.Profile, competency.RoleProfile, []gap.Record, error) {
	p, err := d.loadProfile(commandContext(cmd), cmd)
	if err != nil {
		return nil, competency.RoleProfile{}, nil, err
	}
	roleID, err := d.roleID(cmd, p)
	if err != nil {
		return nil, competency.RoleProfile{}, nil, err
	}
	role, err := d.catalog.GetRole(roleID)
	if err != nil {
		return nil, competency.RoleProfile{}, nil, fmt.Errorf("role not available: %w", err)
	}
	records, err := gap.ComputeGaps(d.agg, p, roleID)
	if err != nil {
		return nil, competency.RoleProfile{}, nil, err
	}
	return p, role, records, nil
}

func formatResource(r competency.Resource) string {
	s := fmt.Sprintf("%s (%s", r.Title, r.Kind)
	if r.Platform != "" {
		s += ", " + r.Platform
	}
	if r.Duration != "" {
		s += ", " + r.Duration
	}
	s += ")"
	if r.URL != "" {
		s += " " + r.URL
	}
	return s
}

func init() {
	roadmapCmd.Flags().Bool("advice", false, "Add AI commentary to the top roadmap items")
	roadmapCmd.Flags().Int("weeks", gap.DefaultPlanWeeks, "Number of weeks in the study plan")
}
