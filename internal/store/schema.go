package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type table struct {
	name string
	ddl  string
}

// tables lists every local table. All timestamps are unix milliseconds.
var tables = []table{
	{
		name: "credentials",
		ddl: `CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			username TEXT NOT NULL,
			token TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		)`,
	},
	{
		name: "progress_events",
		ddl: `CREATE TABLE IF NOT EXISTS progress_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			variant TEXT NOT NULL,
			item_id TEXT NOT NULL,
			action TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	},
	{
		name: "request_events",
		ddl: `CREATE TABLE IF NOT EXISTS request_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL DEFAULT '',
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			purpose TEXT NOT NULL DEFAULT '',
			status INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
	},
	{
		name: "params_snapshots",
		ddl: `CREATE TABLE IF NOT EXISTS params_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			variant TEXT NOT NULL,
			data TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		)`,
	},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS progress_events_variant ON progress_events (variant)`,
	`CREATE INDEX IF NOT EXISTS progress_events_created_at ON progress_events (created_at)`,
	`CREATE INDEX IF NOT EXISTS request_events_created_at ON request_events (created_at)`,
	`CREATE INDEX IF NOT EXISTS params_snapshots_variant ON params_snapshots (variant, saved_at)`,
}

// migrate creates missing tables and indexes.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, t := range tables {
		if err := drv.Exec(ctx, t.ddl, []any{}, nil); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	for _, ddl := range indexes {
		if err := drv.Exec(ctx, ddl, []any{}, nil); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
