package cmd

import (
	"fmt"
	"strconv"

	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/spf13/cobra"
)

var rateCmd = &cobra.Command{
	Use:   "rate <skill-id> <value>",
	Short: fmt.Sprintf("Record a self rating (%d-%d) for a skill", profile.RatingMin, profile.RatingMax),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a whole number from %d to %d", profile.RatingMin, profile.RatingMax)
		}

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
		if err := d.agg.RecordSelfRating(p, args[0], value); err != nil {
			return err
		}
		if err := d.saveProfile(ctx, p); err != nil {
			return err
		}

		est, err := d.agg.Estimate(p, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Rated %s %d/%d. Current estimate: %s/10", args[0], value, profile.RatingMax, gap.FormatLevel(est.Value))
		if est.QuizCount > 0 {
			fmt.Printf(" (%d quiz answers, weight %.0f%%)", est.QuizCount, est.QuizWeight*100)
		}
		fmt.Println()
		return nil
	},
}
