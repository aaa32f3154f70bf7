package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequence numbers session records and LLM events from one counter so the
// two tables interleave in write order. The counter row lives in
// sequenceTable; the mutex serializes writers in this process and the
// RETURNING update keeps other processes consistent.
type sequence struct {
	mu sync.Mutex
	db *sql.DB
}

func openSequence(ctx context.Context, db *sql.DB) (*sequence, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSequence).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequence{db: db}, nil
}

// Next reserves and returns the next number.
func (s *sequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	row := s.db.QueryRowContext(ctx, "UPDATE "+tableSequence+" SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
