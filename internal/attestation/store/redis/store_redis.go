package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/sentinel"
)

var (
	storeDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proofgate_redis_attestation_store_duration_ms",
		Help:    "Latency of Redis attestation store operations in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	}, []string{"operation"})
)

const (
	// Redis key prefix for last-attested-at timestamps
	attestedAtKeyPrefix = "attest:ts:"
)

// putIfNewerScript writes ARGV[1] unless the stored value is larger.
// Returns 1 when written (or equal), 0 when a newer value is kept.
var putIfNewerScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// Store is a Redis-backed attestation store shared by every instance of the
// service. Entries carry no TTL: expiry is decided by the registry.
type Store struct {
	client *redis.Client
}

// Option configures a Store instance.
type Option func(*Store)

// New constructs a Redis-backed attestation store.
func New(client *redis.Client, opts ...Option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func key(identity domain.Identity) string {
	return attestedAtKeyPrefix + identity.String()
}

func (s *Store) Get(ctx context.Context, identity domain.Identity) (models.Timestamp, error) {
	defer observe("get", time.Now())

	raw, err := s.client.Get(ctx, key(identity)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get attestation: %w", err)
	}
	return parseTimestamp(raw)
}

// GetMany uses a single MGET; identities without a key are omitted.
func (s *Store) GetMany(ctx context.Context, identities []domain.Identity) (map[domain.Identity]models.Timestamp, error) {
	out := make(map[domain.Identity]models.Timestamp, len(identities))
	if len(identities) == 0 {
		return out, nil
	}
	defer observe("get_many", time.Now())

	keys := make([]string, len(identities))
	for i, identity := range identities {
		keys[i] = key(identity)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get attestations: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, err
		}
		out[identities[i]] = ts
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, identity domain.Identity, ts models.Timestamp) error {
	defer observe("put", time.Now())

	if err := s.client.Set(ctx, key(identity), int64(ts), 0).Err(); err != nil {
		return fmt.Errorf("put attestation: %w", err)
	}
	return nil
}

// PutIfNewer runs the compare-and-set as one Lua script so concurrent writers
// for the same identity cannot interleave.
func (s *Store) PutIfNewer(ctx context.Context, identity domain.Identity, ts models.Timestamp) error {
	defer observe("put_if_newer", time.Now())

	written, err := putIfNewerScript.Run(ctx, s.client, []string{key(identity)}, int64(ts)).Int()
	if err != nil {
		return fmt.Errorf("put attestation if newer: %w", err)
	}
	if written == 0 {
		return sentinel.ErrStale
	}
	return nil
}

func parseTimestamp(raw string) (models.Timestamp, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt attestation timestamp %q: %w", raw, err)
	}
	return models.Timestamp(v), nil
}

func observe(op string, start time.Time) {
	storeDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
