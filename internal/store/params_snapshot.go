package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// paramsRepo implements ParamsRepo.
type paramsRepo struct {
	drv *entsql.Driver
}

func (r *paramsRepo) Save(ctx context.Context, snap *ParamsSnapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	query, args := builder().Insert("params_snapshots").
		Columns("variant", "data", "saved_at").
		Values(snap.Variant, string(snap.Data), snap.SavedAt.UnixMilli()).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save params snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = id
	}
	return nil
}

func (r *paramsRepo) Latest(ctx context.Context, variant string) (*ParamsSnapshot, error) {
	query, args := builder().Select("id", "variant", "data", "saved_at").
		From(entsql.Table("params_snapshots")).
		Where(entsql.EQ("variant", variant)).
		OrderBy(entsql.Desc("saved_at"), entsql.Desc("id")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest params snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		snap    ParamsSnapshot
		data    string
		savedAt int64
	)
	if err := rows.Scan(&snap.ID, &snap.Variant, &data, &savedAt); err != nil {
		return nil, fmt.Errorf("scan params snapshot: %w", err)
	}
	snap.Data = []byte(data)
	snap.SavedAt = time.UnixMilli(savedAt)
	return &snap, nil
}

func (r *paramsRepo) Prune(ctx context.Context, variant string, keep int) error {
	// Find the ID threshold: the (keep+1)th most recent snapshot.
	query, args := builder().Select("id").
		From(entsql.Table("params_snapshots")).
		Where(entsql.EQ("variant", variant)).
		OrderBy(entsql.Desc("id")).
		Offset(keep).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return fmt.Errorf("query params snapshots for prune: %w", err)
	}
	var threshold int64
	found := rows.Next()
	if found {
		if err := rows.Scan(&threshold); err != nil {
			rows.Close()
			return fmt.Errorf("scan prune threshold: %w", err)
		}
	}
	rows.Close()
	if !found {
		return nil // fewer than keep snapshots exist
	}

	query, args = builder().Delete("params_snapshots").
		Where(entsql.And(
			entsql.EQ("variant", variant),
			entsql.LTE("id", threshold),
		)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune params snapshots: %w", err)
	}
	return nil
}
