package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/voxtutor/internal/persona"
)

// stateTTL expires abandoned sessions.
const stateTTL = 24 * time.Hour

// Redis is a Store backed by a Redis server, for deployments where several
// API instances serve the same sessions.
type Redis struct {
	rdb    *goredis.Client
	prefix string
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string, db int, prefix string) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis state store: %w", err)
	}
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

func (r *Redis) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *Redis) Get(ctx context.Context, sessionID string) (persona.SessionState, error) {
	raw, err := r.rdb.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return persona.SessionState{}, fmt.Errorf("%s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return persona.SessionState{}, fmt.Errorf("redis get: %w", err)
	}
	return decode(raw)
}

func (r *Redis) Put(ctx context.Context, st persona.SessionState) error {
	raw, err := encode(st)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(st.SessionID), raw, stateTTL).Err()
}

func (r *Redis) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, r.key(sessionID)).Err()
}

func (r *Redis) List(ctx context.Context) ([]persona.SessionState, error) {
	var out []persona.SessionState
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		st, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sortStates(out)
	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
