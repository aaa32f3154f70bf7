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

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) GetUserProfile(ctx context.Context, userID string) (*learner.Profile, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("user_id", "current_level", "learning_goals", "preferred_topics", "progress").
		From(entsql.Table(tableLearners)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var (
		p                       learner.Profile
		level                   string
		goals, topics, progress string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.UserID, &level, &goals, &topics, &progress)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", userID, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	p.CurrentLevel = learner.Level(level)
	if err := json.Unmarshal([]byte(goals), &p.LearningGoals); err != nil {
		return nil, fmt.Errorf("decode learning goals: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &p.PreferredTopics); err != nil {
		return nil, fmt.Errorf("decode preferred topics: %w", err)
	}
	if err := json.Unmarshal([]byte(progress), &p.Progress); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) SaveUserProfile(ctx context.Context, p learner.Profile) error {
	if p.UserID == "" {
		return errors.New("save profile: empty user id")
	}
	goals, err := marshalText(nonNil(p.LearningGoals))
	if err != nil {
		return err
	}
	topics, err := marshalText(nonNil(p.PreferredTopics))
	if err != nil {
		return err
	}
	progress, err := marshalText(p.Progress)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLearners).
		Columns("user_id", "current_level", "learning_goals", "preferred_topics", "progress", "updated_at").
		Values(p.UserID, string(p.Level()), goals, topics, progress, time.Now().UnixMilli()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func marshalText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode column: %w", err)
	}
	return string(b), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
