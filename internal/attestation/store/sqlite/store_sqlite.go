package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS attestations (
	identity    TEXT PRIMARY KEY,
	attested_at INTEGER NOT NULL,
	updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const (
	getQuery     = `SELECT attested_at FROM attestations WHERE identity = ?`
	getManyQuery = `SELECT identity, attested_at FROM attestations WHERE identity IN (?)`
	upsertQuery  = `
INSERT INTO attestations (identity, attested_at, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (identity) DO UPDATE
SET attested_at = excluded.attested_at, updated_at = CURRENT_TIMESTAMP`
	upsertIfNewerQuery = upsertQuery + `
WHERE attestations.attested_at <= excluded.attested_at`
)

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA busy_timeout = 5000;",
}

type row struct {
	Identity   string `db:"identity"`
	AttestedAt int64  `db:"attested_at"`
}

// Store keeps last-attested-at timestamps in an embedded SQLite file, for
// single-node deployments that need the registry to survive restarts.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create attestations table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Health pings the database.
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, identity domain.Identity) (models.Timestamp, error) {
	var ts int64
	if err := s.db.GetContext(ctx, &ts, getQuery, identity.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("get attestation: %w", err)
	}
	return models.Timestamp(ts), nil
}

func (s *Store) GetMany(ctx context.Context, identities []domain.Identity) (map[domain.Identity]models.Timestamp, error) {
	out := make(map[domain.Identity]models.Timestamp, len(identities))
	if len(identities) == 0 {
		return out, nil
	}
	keys := make([]string, len(identities))
	for i, identity := range identities {
		keys[i] = identity.String()
	}
	query, args, err := sqlx.In(getManyQuery, keys)
	if err != nil {
		return nil, fmt.Errorf("build attestation query: %w", err)
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get attestations: %w", err)
	}
	for _, r := range rows {
		identity, err := domain.ParseIdentity(r.Identity)
		if err != nil {
			return nil, fmt.Errorf("corrupt attestation identity %q: %w", r.Identity, err)
		}
		out[identity] = models.Timestamp(r.AttestedAt)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, identity domain.Identity, ts models.Timestamp) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, identity.String(), int64(ts)); err != nil {
		return fmt.Errorf("put attestation: %w", err)
	}
	return nil
}

func (s *Store) PutIfNewer(ctx context.Context, identity domain.Identity, ts models.Timestamp) error {
	res, err := s.db.ExecContext(ctx, upsertIfNewerQuery, identity.String(), int64(ts))
	if err != nil {
		return fmt.Errorf("put attestation if newer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put attestation if newer: %w", err)
	}
	if n == 0 {
		return sentinel.ErrStale
	}
	return nil
}
