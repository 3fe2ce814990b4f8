package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Browse target roles in the competency catalog",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		roles := cat.ListRoles()

		fmt.Printf("%-24s  %-32s  %6s\n", "ID", "Name", "Skills")
		fmt.Println(strings.Repeat("─", 66))
		for _, r := range roles {
			fmt.Printf("%-24s  %-32s  %6d\n", r.ID, truncate(r.Name, 32), len(r.Requirements))
		}
		fmt.Printf("\n%d roles\n", len(roles))
		return nil
	},
}

var rolesShowCmd = &cobra.Command{
	Use:   "show <role-id>",
	Short: "Show the skills a role requires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		role, err := cat.GetRole(args[0])
		if err != nil {
			return fmt.Errorf("role not available: %w", err)
		}

		fmt.Printf("%s (%s)\n", role.Name, role.ID)
		if role.Description != "" {
			fmt.Println(role.Description)
		}
		fmt.Println()
		fmt.Printf("%-20s  %-28s  %-16s  %6s  %10s\n", "Skill", "Name", "Category", "Target", "Importance")
		fmt.Println(strings.Repeat("─", 88))
		for _, req := range role.Requirements {
			s, err := cat.Skill(req.SkillID)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s  %-28s  %-16s  %6s  %10.1f\n",
				s.ID, truncate(s.Name, 28), truncate(s.Category, 16), gap.FormatLevel(req.Level), s.Importance)
		}
		return nil
	},
}

var rolesUseCmd = &cobra.Command{
	Use:   "use <role-id>",
	Short: "Select the target role for the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		role, err := d.catalog.GetRole(args[0])
		if err != nil {
			return fmt.Errorf("role not available: %w", err)
		}

		ctx := commandContext(cmd)
		p, err := d.loadProfile(ctx, cmd)
		if err != nil {
			return err
		}
		p.SelectedRole = role.ID
		if hours, _ := cmd.Flags().GetInt("hours"); hours > 0 {
			p.HoursPerWeek = hours
		}
		p.Touch(nowUTC())
		if err := d.saveProfile(ctx, p); err != nil {
			return err
		}
		fmt.Printf("Target role for %s set to %s.\n", p.Name, role.Name)
		return nil
	},
}

// loadCatalog loads only the catalog, for commands that never touch a
// profile.
func loadCatalog(cmd *cobra.Command) (*competency.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		path = cfg.Catalog.Path
	}
	if path == "" {
		return competency.Default(), nil
	}
	cat, err := competency.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func init() {
	rolesUseCmd.Flags().Int("hours", 0, "Weekly study hours used for roadmap estimates")

	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesShowCmd)
	rolesCmd.AddCommand(rolesUseCmd)
}
