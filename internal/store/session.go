package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/voxtutor/internal/learner"
)

type sessionRepo struct {
	db  *sql.DB
	seq *sequence
}

func (r *sessionRepo) AppendSession(ctx context.Context, rec learner.SessionRecord) error {
	if rec.SessionID == "" || rec.UserID == "" {
		return errors.New("append session: session and user id are required")
	}
	metrics, err := marshalText(rec.Metrics)
	if err != nil {
		return err
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSessions).
		Columns("sequence", "session_id", "user_id", "topic", "persona", "started_at", "metrics").
		Values(seqNum, rec.SessionID, rec.UserID, rec.Topic, rec.Persona, rec.StartedAt.UnixMilli(), metrics).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append session %q: %w", rec.SessionID, err)
	}
	return nil
}

func (r *sessionRepo) GetSessionHistory(ctx context.Context, userID string, limit int) ([]learner.SessionRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("session_id", "user_id", "topic", "persona", "started_at", "metrics").
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []learner.SessionRecord
	for rows.Next() {
		var (
			rec     learner.SessionRecord
			started int64
			metrics string
		)
		if err := rows.Scan(&rec.SessionID, &rec.UserID, &rec.Topic, &rec.Persona, &started, &metrics); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("decode metrics for %q: %w", rec.SessionID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Selected newest first so the limit keeps the most recent; flip back.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
