package memory

import (
	"context"
	"maps"
	"sync"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/sentinel"
)

// InMemoryStore keeps registry entries in a map. A single mutex serialises
// writes so each Put/PutIfNewer is atomic.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.Identity]models.Timestamp
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[domain.Identity]models.Timestamp)}
}

func (s *InMemoryStore) Get(_ context.Context, identity domain.Identity) (models.Timestamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.entries[identity]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return ts, nil
}

func (s *InMemoryStore) GetMany(_ context.Context, identities []domain.Identity) (map[domain.Identity]models.Timestamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Identity]models.Timestamp, len(identities))
	for _, id := range identities {
		if ts, ok := s.entries[id]; ok {
			out[id] = ts
		}
	}
	return out, nil
}

func (s *InMemoryStore) Put(_ context.Context, identity domain.Identity, ts models.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity] = ts
	return nil
}

func (s *InMemoryStore) PutIfNewer(_ context.Context, identity domain.Identity, ts models.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.entries[identity]; ok && current > ts {
		return sentinel.ErrStale
	}
	s.entries[identity] = ts
	return nil
}

// Snapshot returns a copy of every entry.
func (s *InMemoryStore) Snapshot() map[domain.Identity]models.Timestamp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}
