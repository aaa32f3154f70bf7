// Package store persists learner profiles, finished sessions and the LLM
// request log in SQLite. Tables are declared in tables.go and migrated with
// ent's schema migrator; queries are built with ent's SQL builder.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"go.uber.org/zap"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// connPragmas run on every pooled connection. WAL lets the API server read
// while the CLI records sessions.
var connPragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequence
	log *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for store diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open opens or creates the database at path, migrates it and prepares the
// write sequence. path may already carry query parameters.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db, drv: entsql.OpenDB(dialect.SQLite, db), log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	s.seq, err = openSequence(ctx, s.db)
	return err
}

// dsn appends a _pragma parameter for each connection pragma the caller has
// not set.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		name := p[:strings.IndexByte(p, '(')]
		if !strings.Contains(path, name) {
			q.Add("_pragma", p)
		}
	}
	if len(q) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// DB exposes the handle for ad hoc queries.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.drv.Close() }

// ProfileRepo returns the learner profile repository.
func (s *Store) ProfileRepo() ProfileRepo { return &profileRepo{db: s.db} }

// SessionRepo returns the session history repository.
func (s *Store) SessionRepo() SessionRepo { return &sessionRepo{db: s.db, seq: s.seq} }

// EventRepo returns the LLM request log.
func (s *Store) EventRepo() EventRepo { return &eventRepo{db: s.db, seq: s.seq} }

// Reader returns the read side used by the decision pipeline.
func (s *Store) Reader() ProfileReader {
	return reader{ProfileRepo: s.ProfileRepo(), SessionRepo: s.SessionRepo()}
}

type reader struct {
	ProfileRepo
	SessionRepo
}

// DefaultDBPath is $VOXTUTOR_DB when set, otherwise voxtutor/voxtutor.db
// under $XDG_DATA_HOME (default ~/.local/share). The parent directory is
// created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("VOXTUTOR_DB")
	if p == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(base, "voxtutor", "voxtutor.db")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return p, nil
}
