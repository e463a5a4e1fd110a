package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo.
type eventRepo struct {
	drv *entsql.Driver
}

func (r *eventRepo) AppendProgress(ctx context.Context, data ProgressEventData) error {
	query, args := builder().Insert("progress_events").
		Columns("variant", "item_id", "action", "created_at").
		Values(data.Variant, data.ItemID, data.Action, time.Now().UnixMilli()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save progress event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryProgress(ctx context.Context, opts QueryOpts) ([]ProgressEventRecord, error) {
	sel := builder().Select("id", "variant", "item_id", "action", "created_at").
		From(entsql.Table("progress_events")).
		OrderBy(entsql.Desc("id"))
	if preds := opts.predicates("created_at"); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query progress events: %w", err)
	}
	defer rows.Close()

	var out []ProgressEventRecord
	for rows.Next() {
		var (
			rec       ProgressEventRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Variant, &rec.ItemID, &rec.Action, &createdAt); err != nil {
			return nil, fmt.Errorf("scan progress event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) ProgressStats(ctx context.Context) ([]ProgressStat, error) {
	query, args := builder().Select("variant", "action", entsql.Count("*")).
		From(entsql.Table("progress_events")).
		GroupBy("variant", "action").
		OrderBy("variant").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query progress stats: %w", err)
	}
	defer rows.Close()

	var out []ProgressStat
	index := make(map[string]int)
	for rows.Next() {
		var (
			variant, action string
			count           int
		)
		if err := rows.Scan(&variant, &action, &count); err != nil {
			return nil, fmt.Errorf("scan progress stat: %w", err)
		}
		i, ok := index[variant]
		if !ok {
			i = len(out)
			index[variant] = i
			out = append(out, ProgressStat{Variant: variant})
		}
		switch action {
		case "know":
			out[i].Known += count
		case "not_know":
			out[i].NotKnown += count
		}
	}
	return out, rows.Err()
}

func (r *eventRepo) AppendRequest(ctx context.Context, data RequestEventData) error {
	query, args := builder().Insert("request_events").
		Columns("request_id", "method", "path", "purpose", "status",
			"latency_ms", "success", "error_message", "created_at").
		Values(data.RequestID, data.Method, data.Path, data.Purpose, data.Status,
			data.LatencyMs, data.Success, data.ErrorMessage, time.Now().UnixMilli()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) RequestSummary(ctx context.Context) (RequestSummary, error) {
	query, args := builder().Select(
		entsql.Count("*"),
		"COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0)",
		"COALESCE(AVG(latency_ms), 0)",
	).From(entsql.Table("request_events")).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return RequestSummary{}, fmt.Errorf("query request summary: %w", err)
	}
	defer rows.Close()

	var sum RequestSummary
	if rows.Next() {
		if err := rows.Scan(&sum.Total, &sum.Failed, &sum.AvgLatencyMs); err != nil {
			return RequestSummary{}, fmt.Errorf("scan request summary: %w", err)
		}
	}
	return sum, rows.Err()
}

// predicates translates the filter options; tsColumn holds unix millis.
func (o QueryOpts) predicates(tsColumn string) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if o.After > 0 {
		preds = append(preds, entsql.GT("id", o.After))
	}
	if o.Before > 0 {
		preds = append(preds, entsql.LT("id", o.Before))
	}
	if !o.From.IsZero() {
		preds = append(preds, entsql.GTE(tsColumn, o.From.UnixMilli()))
	}
	if !o.To.IsZero() {
		preds = append(preds, entsql.LTE(tsColumn, o.To.UnixMilli()))
	}
	if o.Variant != "" {
		preds = append(preds, entsql.EQ("variant", o.Variant))
	}
	return preds
}
