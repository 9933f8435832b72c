package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	"proofgate/pkg/requestcontext"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

var alice = domain.MustParseIdentity("0x" + strings.Repeat("a1", domain.IdentityLen))

func TestPublisher_Publish(t *testing.T) {
	fake := &fakeProducer{}
	pub := &Publisher{client: fake, topic: "interactions"}
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")

	err := pub.Publish(ctx, models.InteractionRecord{Identity: alice, Timestamp: 1_059_999})
	require.NoError(t, err)
	require.Len(t, fake.records, 1)

	rec := fake.records[0]
	assert.Equal(t, "interactions", rec.Topic)
	assert.Equal(t, alice.String(), string(rec.Key))

	var body payload
	require.NoError(t, json.Unmarshal(rec.Value, &body))
	assert.Equal(t, alice.String(), body.Identity)
	assert.Equal(t, int64(1_059_999), body.Timestamp)

	headers := map[string]string{}
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "req-1", headers[HeaderRequestID])
	assert.Equal(t, EventTypeInteraction, headers[HeaderEventType])
	assert.Equal(t, body.EventID, headers[HeaderEventID])
}

func TestPublisher_PropagatesProduceError(t *testing.T) {
	boom := errors.New("broker unreachable")
	pub := &Publisher{client: &fakeProducer{err: boom}, topic: "interactions"}

	err := pub.Publish(context.Background(), models.InteractionRecord{Identity: alice, Timestamp: 1})
	assert.ErrorIs(t, err, boom)
}
