package memory

import (
	"context"
	"sync"

	"proofgate/internal/attestation/models"
)

// Publisher keeps interaction records in memory. Used when no broker is
// configured and in tests.
type Publisher struct {
	mu      sync.RWMutex
	records []models.InteractionRecord
	limit   int
}

// NewPublisher retains at most limit records (oldest dropped first); limit
// <= 0 retains everything.
func NewPublisher(limit int) *Publisher {
	return &Publisher{limit: limit}
}

func (p *Publisher) Publish(_ context.Context, record models.InteractionRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, record)
	if p.limit > 0 && len(p.records) > p.limit {
		p.records = p.records[len(p.records)-p.limit:]
	}
	return nil
}

// Records returns a copy of the retained records, oldest first.
func (p *Publisher) Records() []models.InteractionRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.InteractionRecord(nil), p.records...)
}
