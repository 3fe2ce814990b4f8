package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect or reset the stored profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show self ratings, quiz evidence and current estimates",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := d.loadProfile(commandContext(cmd), cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Profile:  %s\n", p.Name)
		role := "(none)"
		if p.SelectedRole != "" {
			role = p.SelectedRole
			if r, err := d.catalog.GetRole(p.SelectedRole); err == nil {
				role = r.Name
			}
		}
		fmt.Printf("Role:     %s\n", role)
		hours := p.HoursPerWeek
		if hours <= 0 {
			hours = gap.DefaultHoursPerWeek
		}
		fmt.Printf("Study:    %d h/week\n", hours)
		if p.Resume != nil {
			fmt.Printf("Resume:   %d skills detected (%s)\n", len(p.Resume.Skills), p.Resume.Source)
		}
		if !p.UpdatedAt.IsZero() {
			fmt.Printf("Updated:  %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()

		ids := assessedSkills(p)
		if len(ids) == 0 {
			fmt.Println("No self ratings or quiz answers yet.")
			return nil
		}

		fmt.Printf("%-20s  %-28s  %6s  %7s  %8s\n", "Skill", "Name", "Rating", "Quizzed", "Estimate")
		fmt.Println(strings.Repeat("─", 78))
		for _, id := range ids {
			name := id
			if s, err := d.catalog.Skill(id); err == nil {
				name = s.Name
			}
			rating := "-"
			if r, ok := p.Rating(id); ok {
				rating = fmt.Sprintf("%d/%d", r.Value, profile.RatingMax)
			}
			est, err := d.agg.Estimate(p, id)
			if err != nil {
				continue
			}
			flag := ""
			if est.LowConfidence {
				flag = " *"
			}
			fmt.Printf("%-20s  %-28s  %6s  %7d  %8s%s\n",
				id, truncate(name, 28), rating, est.QuizCount, gap.FormatLevel(est.Value), flag)
		}
		fmt.Println("\n* low confidence: fewer quiz answers than the convergence window")
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		name := d.profileName(cmd)
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to delete profile %q without --yes", profile.New(name).Name)
		}
		if err := d.profiles.Delete(commandContext(cmd), profile.Key(name)); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		fmt.Printf("Profile %q reset.\n", profile.New(name).Name)
		return nil
	},
}

// assessedSkills lists every skill with a self rating or quiz answer,
// sorted by ID.
func assessedSkills(p *profile.Profile) []string {
	seen := make(map[string]bool)
	for id := range p.SelfRatings {
		seen[id] = true
	}
	for _, r := range p.QuizHistory {
		seen[r.SkillID] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func init() {
	profileResetCmd.Flags().Bool("yes", false, "Confirm deletion")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileResetCmd)
}
