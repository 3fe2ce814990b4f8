package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/skillforge/internal/profile"
)

// profileRepo stores profile blobs in the user_state table, one row per
// normalized profile name.
type profileRepo struct {
	drv   *entsql.Driver
	codec *profile.Codec
}

func (r *profileRepo) Get(ctx context.Context, key string) (*profile.Profile, error) {
	query, args := builder().Select(colData).
		From(entsql.Table(userStateTable)).
		Where(entsql.EQ(colProfileName, key)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query profile %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query profile %q: %w", key, err)
		}
		return nil, nil
	}
	var blob []byte
	if err := rows.Scan(&blob); err != nil {
		return nil, fmt.Errorf("scan profile %q: %w", key, err)
	}
	p, err := r.codec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", key, err)
	}
	return p, nil
}

func (r *profileRepo) Put(ctx context.Context, key string, p *profile.Profile) error {
	blob, err := r.codec.Encode(p)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", key, err)
	}

	query, args := builder().Insert(userStateTable).
		Columns(colProfileName, colData, colUpdatedAt).
		Values(key, string(blob), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns(colProfileName),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := exec(ctx, r.drv, query, args); err != nil {
		return fmt.Errorf("save profile %q: %w", key, err)
	}
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().Delete(userStateTable).
		Where(entsql.EQ(colProfileName, key)).
		Query()
	if _, err := exec(ctx, r.drv, query, args); err != nil {
		return fmt.Errorf("delete profile %q: %w", key, err)
	}
	return nil
}

// putRaw writes a blob without validation.
func (r *profileRepo) putRaw(ctx context.Context, key string, blob []byte) error {
	query, args := builder().Insert(userStateTable).
		Columns(colProfileName, colData, colUpdatedAt).
		Values(key, string(blob), time.Now().UTC()).
		Query()
	_, err := exec(ctx, r.drv, query, args)
	return err
}
