package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by the llm_requests table and the
// global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequence
}

var llmEventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLLMRequests).
		Columns(llmEventColumns[1:]...).
		Values(seqNum, time.Now().UnixMilli(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if opts.FailedOnly {
		preds = append(preds, entsql.EQ("success", false))
	}

	sel := entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(entsql.Table(tableLLMRequests)).
		OrderBy(entsql.Desc("sequence"))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(entsql.Table(tableLLMRequests)).
		Where(entsql.EQ("id", id)).
		Query()
	ev, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, ErrEventNotFound)
	}
	return ev, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s scanner) (*LLMEvent, error) {
	var (
		ev LLMEvent
		ts int64
	)
	err := s.Scan(&ev.ID, &ev.Sequence, &ts, &ev.Provider, &ev.Model, &ev.Purpose,
		&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success,
		&ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	ev.Timestamp = time.UnixMilli(ts).UTC()
	return &ev, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"purpose",
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As("COALESCE(SUM(input_tokens), 0)", "input_tokens"),
			entsql.As("COALESCE(SUM(output_tokens), 0)", "output_tokens"),
			entsql.As("CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)", "avg_latency_ms"),
		).
		From(entsql.Table(tableLLMRequests)).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []LLMUsageStats
	for rows.Next() {
		var u LLMUsageStats
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsageStats, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"model",
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As("COALESCE(SUM(input_tokens), 0)", "input_tokens"),
			entsql.As("COALESCE(SUM(output_tokens), 0)", "output_tokens"),
		).
		From(entsql.Table(tableLLMRequests)).
		GroupBy("model").
		OrderBy("model").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsageStats
	for rows.Next() {
		var u ModelUsageStats
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
