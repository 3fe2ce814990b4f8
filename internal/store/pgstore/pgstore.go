// Package pgstore stores profiles in PostgreSQL, one JSONB document per
// profile name.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillforge/internal/profile"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds the connection settings.
type Config struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS user_state (
	profile_name TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// querier is the subset of *pgxpool.Pool the repo uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements profile.Repo on PostgreSQL.
type Repo struct {
	db    querier
	pool  *pgxpool.Pool
	codec *profile.Codec
}

// Connect opens a pool, pings it and ensures the user_state table exists.
func Connect(ctx context.Context, cfg Config, codec *profile.Codec) (*Repo, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres DSN is required")
	}
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &Repo{db: pool, pool: pool, codec: codec}
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// EnsureSchema creates the user_state table if needed.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create user_state table: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Repo) Get(ctx context.Context, key string) (*profile.Profile, error) {
	var blob []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM user_state WHERE profile_name = $1`, key,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile %q: %w", key, err)
	}
	p, err := r.codec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", key, err)
	}
	return p, nil
}

func (r *Repo) Put(ctx context.Context, key string, p *profile.Profile) error {
	blob, err := r.codec.Encode(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", key, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO user_state (profile_name, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (profile_name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		key, blob,
	)
	if err != nil {
		return fmt.Errorf("save profile %q: %w", key, err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_state WHERE profile_name = $1`, key); err != nil {
		return fmt.Errorf("delete profile %q: %w", key, err)
	}
	return nil
}
