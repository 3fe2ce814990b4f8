package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/config"
	"github.com/abhisek/skillforge/internal/llm"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/abhisek/skillforge/internal/store/pgstore"
	"github.com/abhisek/skillforge/internal/store/rediscache"
	"github.com/spf13/cobra"
)

var errNoRole = errors.New("no target role selected: pass --role or run `skillforge roles use <id>`")

// deps are the collaborators shared by every command.
type deps struct {
	cfg      *config.Config
	catalog  *competency.Catalog
	agg      *assessment.Aggregator
	store    *store.Store
	events   store.EventRepo
	profiles profile.Repo
	provider llm.Provider
	advisor  *advisor.Advisor
	logger   *log.Logger

	closers []func()
}

// loadDeps resolves configuration and opens the stores. SQLite always
// backs the event log; profiles go to Postgres when configured, with an
// optional Redis read-through cache in front.
func loadDeps(cmd *cobra.Command) (*deps, error) {
	ctx := commandContext(cmd)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &deps{
		cfg:    cfg,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}

	catalogPath, _ := cmd.Flags().GetString("catalog")
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	if catalogPath != "" {
		d.catalog, err = competency.LoadFile(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	} else {
		d.catalog = competency.Default()
	}
	d.agg = assessment.NewAggregator(d.catalog, cfg.Quiz)
	codec := profile.NewCodec(d.catalog)

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	d.store, err = store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.closers = append(d.closers, func() { d.store.Close() })
	d.events = d.store.EventRepo()

	var repo profile.Repo = d.store.ProfileRepo(codec)
	if cfg.Store.Driver == config.DriverPostgres {
		pg, err := pgstore.Connect(ctx, cfg.Store.Postgres, codec)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pg.Close)
		repo = pg
	}
	if client := rediscache.NewClient(ctx, cfg.Cache, d.logger); client != nil {
		d.closers = append(d.closers, func() { client.Close() })
		repo = rediscache.New(repo, client, codec, cfg.Cache, d.logger)
	}
	d.profiles = repo

	provider, err := llm.NewProviderFromConfig(ctx, cfg.LLM, d.events)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will use rule-based fallbacks.")
	} else {
		d.provider = provider
	}

	advCfg := advisor.DefaultConfig()
	if cfg.Advisor.MaxConcurrency > 0 {
		advCfg.MaxConcurrency = cfg.Advisor.MaxConcurrency
	}
	d.advisor = advisor.New(d.catalog, d.provider, advCfg)
	return d, nil
}

// Close releases stores in reverse order of opening.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// profileName resolves --profile, then the configured profile.
func (d *deps) profileName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		return name
	}
	return d.cfg.Profile
}

func (d *deps) loadProfile(ctx context.Context, cmd *cobra.Command) (*profile.Profile, error) {
	p, err := profile.LoadOrNew(ctx, d.profiles, d.profileName(cmd))
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (d *deps) saveProfile(ctx context.Context, p *profile.Profile) error {
	if err := profile.Save(ctx, d.profiles, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// roleID resolves --role, then the profile's selection, then the
// configured default role.
func (d *deps) roleID(cmd *cobra.Command, p *profile.Profile) (string, error) {
	if id, _ := cmd.Flags().GetString("role"); id != "" {
		return id, nil
	}
	if p != nil && p.SelectedRole != "" {
		return p.SelectedRole, nil
	}
	if d.cfg.Role != "" {
		return d.cfg.Role, nil
	}
	return "", errNoRole
}

// grader uses the model for free-text answers when one is configured.
func (d *deps) grader() quiz.Grader {
	if d.provider == nil {
		return quiz.RuleGrader{}
	}
	return quiz.NewLLMGrader(d.provider, quiz.DefaultLLMGraderConfig())
}

// advisorContext bounds a single advisor call by advisor.timeout.
func (d *deps) advisorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.Advisor.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.cfg.Advisor.Timeout)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
