package cmd

import (
	"github.com/abhisek/skillforge/internal/config"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Career skill-gap assessment",
	Long: "SkillForge compares your skills against a target role, runs adaptive quizzes " +
		"to calibrate your self-assessment, and builds a prioritized learning roadmap.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a skillforge.yaml config file")
	pf.String("db", "", "Path to SQLite database file (overrides SKILLFORGE_DB env var)")
	pf.String("profile", "", "Profile name (defaults to the configured profile, then guest)")
	pf.String("role", "", "Target role ID (defaults to the profile's selected role)")
	pf.String("catalog", "", "Path to a competency catalog YAML file")

	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the layered configuration, honoring --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(config.Options{ConfigFile: path})
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then store.path from config, then SKILLFORGE_DB env var, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}
