package cmd

import (
	"fmt"

	"github.com/abhisek/skillforge/internal/app"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/spf13/cobra"
)

// runApp opens the stores, loads the profile, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := loadDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := commandContext(cmd)
	p, err := d.loadProfile(ctx, cmd)
	if err != nil {
		return err
	}
	if id, _ := cmd.Flags().GetString("role"); id != "" {
		if _, err := d.catalog.GetRole(id); err != nil {
			return fmt.Errorf("role %q: %w", id, err)
		}
		p.SelectedRole = id
	} else if p.SelectedRole == "" && d.cfg.Role != "" {
		p.SelectedRole = d.cfg.Role
	}

	skipWelcome, _ := cmd.Flags().GetBool("skip-welcome")
	return app.Run(app.Options{
		Env: &screen.Env{
			Aggregator:     d.agg,
			Profiles:       d.profiles,
			Events:         d.events,
			Advisor:        d.advisor,
			Grader:         d.grader(),
			QuizConfig:     d.cfg.Quiz,
			Profile:        p,
			EnrichLimit:    d.cfg.Advisor.EnrichLimit,
			AdvisorTimeout: d.cfg.Advisor.Timeout,
		},
		SkipWelcome: skipWelcome,
	})
}

func init() {
	rootCmd.Flags().Bool("skip-welcome", false, "Start at the main menu")
}
