// Package config loads layered settings: built-in defaults, an optional
// YAML file, .env files and SKILLFORGE_* environment variables, in
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/skillforge/internal/llm"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/report"
	"github.com/abhisek/skillforge/internal/store/pgstore"
	"github.com/abhisek/skillforge/internal/store/rediscache"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "SKILLFORGE"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	Profile string `mapstructure:"profile"`
	Role    string `mapstructure:"role"`

	Catalog CatalogConfig        `mapstructure:"catalog"`
	Store   StoreConfig          `mapstructure:"store"`
	Cache   rediscache.Config    `mapstructure:"cache"`
	Server  ServerConfig         `mapstructure:"server"`
	Quiz    quiz.Config          `mapstructure:"quiz"`
	LLM     llm.Config           `mapstructure:"llm"`
	Advisor AdvisorConfig        `mapstructure:"advisor"`
	Publish report.PublishConfig `mapstructure:"publish"`
}

// CatalogConfig selects the competency catalog. An empty path uses the
// embedded default.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig selects the profile store.
type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	Path     string         `mapstructure:"path"`
	Postgres pgstore.Config `mapstructure:"postgres"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	TokenSecret  string        `mapstructure:"token_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AdvisorConfig bounds AI enrichment.
type AdvisorConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	EnrichLimit    int           `mapstructure:"enrich_limit"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, skillforge.yaml is
	// searched in the user config dir and the working directory.
	ConfigFile string

	// EnvFiles are loaded into the process environment first. Missing
	// files are skipped. Defaults to ".env".
	EnvFiles []string
}

// Load builds the configuration.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("skillforge")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "skillforge"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Advisor.EnrichLimit < 0 {
		return fmt.Errorf("advisor.enrich_limit must not be negative")
	}
	return nil
}

// setDefaults registers every key so environment overrides apply to it.
// LLM defaults start from the provider env variables.
func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", "")
	v.SetDefault("role", "")
	v.SetDefault("catalog.path", "")

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", "")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.max_conns", 4)
	v.SetDefault("store.postgres.min_conns", 0)
	v.SetDefault("store.postgres.connect_timeout", 5*time.Second)
	v.SetDefault("store.postgres.max_conn_lifetime", time.Hour)
	v.SetDefault("store.postgres.max_conn_idle_time", 30*time.Minute)

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", rediscache.DefaultTTL)
	v.SetDefault("cache.prefix", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.token_secret", "")
	v.SetDefault("server.token_ttl", 24*time.Hour)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	q := quiz.DefaultConfig()
	v.SetDefault("quiz.prior", q.Prior)
	v.SetDefault("quiz.slope", q.Slope)
	v.SetDefault("quiz.step0", q.Step0)
	v.SetDefault("quiz.decay", q.Decay)
	v.SetDefault("quiz.min_step", q.MinStep)
	v.SetDefault("quiz.window", q.Window)
	v.SetDefault("quiz.epsilon", q.Epsilon)
	v.SetDefault("quiz.max_questions", q.MaxQuestions)
	v.SetDefault("quiz.confidence_threshold", q.ConfidenceThreshold)

	l := llm.ConfigFromEnv()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.anthropic.api_key", l.Anthropic.APIKey)
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", l.OpenAI.APIKey)
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", l.OpenAI.BaseURL)
	v.SetDefault("llm.gemini.api_key", l.Gemini.APIKey)
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", l.OpenRouter.APIKey)
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", l.OpenRouter.BaseURL)
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)

	v.SetDefault("advisor.timeout", 20*time.Second)
	v.SetDefault("advisor.enrich_limit", 3)
	v.SetDefault("advisor.max_concurrency", 3)

	v.SetDefault("publish.host", "")
	v.SetDefault("publish.port", 22)
	v.SetDefault("publish.user", "")
	v.SetDefault("publish.password", "")
	v.SetDefault("publish.key_file", "")
	v.SetDefault("publish.known_hosts", "")
	v.SetDefault("publish.insecure_ignore_host_key", false)
	v.SetDefault("publish.remote_dir", "/")
	v.SetDefault("publish.compress", false)
	v.SetDefault("publish.timeout", 20*time.Second)
}
