package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// credentialRepo implements CredentialRepo over a single-row table.
type credentialRepo struct {
	drv *entsql.Driver
}

func (r *credentialRepo) Save(ctx context.Context, c Credentials) error {
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now()
	}
	query, args := builder().Insert("credentials").
		Columns("id", "username", "token", "saved_at").
		Values(1, c.Username, c.Token, c.SavedAt.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (r *credentialRepo) Load(ctx context.Context) (*Credentials, error) {
	query, args := builder().Select("username", "token", "saved_at").
		From(entsql.Table("credentials")).
		Where(entsql.EQ("id", 1)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		c       Credentials
		savedAt int64
	)
	if err := rows.Scan(&c.Username, &c.Token, &savedAt); err != nil {
		return nil, fmt.Errorf("scan credentials: %w", err)
	}
	c.SavedAt = time.UnixMilli(savedAt)
	return &c, nil
}

func (r *credentialRepo) Clear(ctx context.Context) error {
	query, args := builder().Delete("credentials").Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
