package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/sentinel"
)

var (
	queryDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proofgate_postgres_attestation_store_duration_ms",
		Help:    "Latency of PostgreSQL attestation store queries in milliseconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100},
	}, []string{"operation"})
)

const schema = `
CREATE TABLE IF NOT EXISTS attestations (
	identity    TEXT PRIMARY KEY,
	attested_at BIGINT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	getQuery     = `SELECT attested_at FROM attestations WHERE identity = $1`
	getManyQuery = `SELECT identity, attested_at FROM attestations WHERE identity = ANY($1)`
	upsertQuery  = `
INSERT INTO attestations (identity, attested_at, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (identity) DO UPDATE
SET attested_at = EXCLUDED.attested_at, updated_at = now()`
	upsertIfNewerQuery = upsertQuery + `
WHERE attestations.attested_at <= EXCLUDED.attested_at`
)

// Store persists last-attested-at timestamps in PostgreSQL. Row-level upserts
// serialise concurrent writes for the same identity.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed attestation store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the attestations table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create attestations table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, identity domain.Identity) (models.Timestamp, error) {
	defer observe("get", time.Now())

	var ts int64
	err := s.db.QueryRowContext(ctx, getQuery, identity.String()).Scan(&ts)
	if err != nil {
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
	defer observe("get_many", time.Now())

	keys := make([]string, len(identities))
	for i, identity := range identities {
		keys[i] = identity.String()
	}
	rows, err := s.db.QueryContext(ctx, getManyQuery, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("get attestations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			raw string
			ts  int64
		)
		if err := rows.Scan(&raw, &ts); err != nil {
			return nil, fmt.Errorf("scan attestation: %w", err)
		}
		identity, err := domain.ParseIdentity(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt attestation identity %q: %w", raw, err)
		}
		out[identity] = models.Timestamp(ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attestations: %w", err)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, identity domain.Identity, ts models.Timestamp) error {
	defer observe("put", time.Now())

	if _, err := s.db.ExecContext(ctx, upsertQuery, identity.String(), int64(ts)); err != nil {
		return fmt.Errorf("put attestation: %w", err)
	}
	return nil
}

// PutIfNewer relies on the conditional DO UPDATE: no affected row means a
// newer timestamp is already stored.
func (s *Store) PutIfNewer(ctx context.Context, identity domain.Identity, ts models.Timestamp) error {
	defer observe("put_if_newer", time.Now())

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

func observe(op string, start time.Time) {
	queryDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
