package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/skillforge/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the gap analysis and roadmap as an HTML report",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		roleID, err := d.roleID(cmd, p)
		if err != nil {
			return err
		}
		r, err := report.Build(d.agg, p, roleID, nowUTC())
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}

		if withAdvice, _ := cmd.Flags().GetBool("advice"); withAdvice {
			actx, cancel := d.advisorContext(ctx)
			r.Commentary = d.advisor.Enrich(actx, r.Roadmap, d.cfg.Advisor.EnrichLimit)
			cancel()
		}

		content, err := report.RenderBytes(r)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = report.FileName(r.RoleName)
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report written to %s (%d gaps, readiness %.1f%%)\n", out, r.GapCount(), r.Summary.Readiness)

		if publish, _ := cmd.Flags().GetBool("publish"); publish {
			remote, err := report.Publish(ctx, d.cfg.Publish, report.FileName(r.RoleName), content)
			if err != nil {
				return fmt.Errorf("publish report: %w", err)
			}
			fmt.Printf("Published to %s:%s\n", d.cfg.Publish.Host, remote)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("output", "o", "", "Output file (defaults to skillforge_report_<role>.html)")
	reportCmd.Flags().Bool("advice", false, "Add AI commentary to the top roadmap items")
	reportCmd.Flags().Bool("publish", false, "Upload the report over SFTP using the publish settings")
}
