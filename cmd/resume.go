package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/skillforge/internal/llm"
	"github.com/abhisek/skillforge/internal/resume"
	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Raise self ratings from the skills found in a resume",
	Long: `Extract skills and levels from a plain-text resume and raise matching self
ratings. Ratings are never lowered. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("resume %s is empty", args[0])
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

		actx, cancel := d.advisorContext(ctx)
		result := d.advisor.ExtractResume(actx, text)
		cancel()
		if result.Err != nil && d.advisor.Available() {
			fmt.Fprintf(os.Stderr, "AI extraction failed (%s), matched keywords instead\n", llm.Reason(result.Err))
		}

		changed := d.agg.RecordResume(p, resume.Truncate(text), result.Levels, string(result.Source))
		if err := d.saveProfile(ctx, p); err != nil {
			return err
		}

		ids := resume.SortedIDs(p.Resume.Skills)
		if len(ids) == 0 {
			fmt.Println("No catalog skills found in the resume.")
			return nil
		}
		raised := make(map[string]bool, len(changed))
		for _, id := range changed {
			raised[id] = true
		}
		fmt.Printf("Found %d skills (%s):\n", len(ids), result.Source)
		for _, id := range ids {
			mark := ""
			if raised[id] {
				r, _ := p.Rating(id)
				mark = fmt.Sprintf("  rating raised to %d", r.Value)
			}
			fmt.Printf("  %-20s %2d/10%s\n", id, p.Resume.Skills[id], mark)
		}
		return nil
	},
}
