package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [skill-id]",
	Short: "Show finished quiz sessions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		skillID := ""
		if len(args) == 1 {
			skillID = args[0]
		}
		name := d.profileName(cmd)
		p, err := d.loadProfile(commandContext(cmd), cmd)
		if err == nil {
			name = p.Name
		}

		sessions, err := d.events.QuizSessions(commandContext(cmd), name, skillID, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query quiz sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No quiz sessions yet.")
			return nil
		}

		fmt.Printf("%-16s  %-20s  %-10s  %8s  %6s  %8s  %s\n",
			"Date", "Skill", "State", "Estimate", "Score", "Conf", "")
		fmt.Println(strings.Repeat("─", 84))
		for _, s := range sessions {
			low := ""
			if s.LowConfidence {
				low = "low confidence"
			}
			fmt.Printf("%-16s  %-20s  %-10s  %8s  %6s  %7.0f%%  %s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"), truncate(s.SkillID, 20), s.State,
				gap.FormatLevel(s.Estimate), fmt.Sprintf("%d/%d", s.Correct, s.Asked), s.Confidence*100, low)
		}
		fmt.Printf("\n%d sessions\n", len(sessions))
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 20, "Max sessions to show")
}
