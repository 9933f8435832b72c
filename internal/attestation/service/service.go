// Package service exposes the attestation registry to transports: it resolves
// the caller and the trusted time from the request context, runs the
// verifier or the gate, and emits the interaction record on success.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"proofgate/internal/attestation/codec"
	"proofgate/internal/attestation/metrics"
	"proofgate/internal/attestation/models"
	"proofgate/internal/attestation/ports"
	"proofgate/internal/attestation/registry"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/requestcontext"
)

const tracerName = "proofgate/attestation"

// maxStatusBatch bounds StatusMany lookups.
const maxStatusBatch = 100

// Type aliases for interfaces from ports package.
type (
	Store                = ports.Store
	InteractionPublisher = ports.InteractionPublisher
)

type Service struct {
	registry  *registry.Registry
	verifier  *registry.Verifier
	publisher InteractionPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(
	reg *registry.Registry,
	verifier *registry.Verifier,
	publisher InteractionPublisher,
	opts ...Option,
) (*Service, error) {
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	if verifier == nil {
		return nil, errors.New("verifier is required")
	}
	if publisher == nil {
		return nil, errors.New("interaction publisher is required")
	}

	svc := &Service{
		registry:  reg,
		verifier:  verifier,
		publisher: publisher,
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Verify admits att for the authenticated caller.
func (s *Service) Verify(ctx context.Context, att models.Attestation) (models.Timestamp, error) {
	start := time.Now()
	caller := requestcontext.Identity(ctx)

	ctx, span := s.tracer.Start(ctx, "attestation.verify",
		trace.WithAttributes(attribute.String("identity", caller.String())))
	defer span.End()

	ts, err := s.verifier.Submit(ctx, s.registry, att, caller)
	s.metrics.ObserveLatency("verify", time.Since(start))
	if err != nil {
		result := resultLabel(err)
		s.metrics.IncrementVerify(result)
		recordSpanError(span, err)
		s.logFailure(ctx, "attestation_rejected", err,
			"identity", caller.String(),
			"result", result,
			"message", codec.Describe(att.Message),
		)
		return 0, err
	}

	s.metrics.IncrementVerify("accepted")
	span.SetAttributes(attribute.Int64("attested_at", int64(ts)))
	ports.LogAudit(ctx, s.logger, "attestation_accepted",
		"identity", caller.String(),
		"attested_at", int64(ts),
	)
	return ts, nil
}

// Interact runs the gate for the authenticated caller at the request's
// trusted time and publishes the interaction record. A publish failure fails
// the call: the record is the gated effect.
func (s *Service) Interact(ctx context.Context) (models.InteractionRecord, error) {
	start := time.Now()
	caller := requestcontext.Identity(ctx)
	now := requestcontext.Now(ctx)

	ctx, span := s.tracer.Start(ctx, "attestation.interact",
		trace.WithAttributes(attribute.String("identity", caller.String())))
	defer span.End()

	record, err := registry.Attempt(ctx, s.registry, now, caller)
	if err != nil {
		s.metrics.ObserveLatency("interact", time.Since(start))
		result := resultLabel(err)
		s.metrics.IncrementInteract(result)
		recordSpanError(span, err)
		s.logFailure(ctx, "interaction_denied", err, "identity", caller.String(), "result", result)
		return models.InteractionRecord{}, err
	}

	if err := s.publisher.Publish(ctx, record); err != nil {
		s.metrics.ObserveLatency("interact", time.Since(start))
		s.metrics.IncrementPublishFailures()
		s.metrics.IncrementInteract("publish_failed")
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "failed to publish interaction record",
			"identity", caller.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return models.InteractionRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record interaction")
	}

	s.metrics.ObserveLatency("interact", time.Since(start))
	s.metrics.IncrementInteract("allowed")
	ports.LogAudit(ctx, s.logger, "interaction_allowed",
		"identity", caller.String(),
		"timestamp", int64(record.Timestamp),
	)
	return record, nil
}

// Status reports identity's freshness at the request time.
func (s *Service) Status(ctx context.Context, identity domain.Identity) (models.EntryStatus, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("status", time.Since(start)) }()
	return s.registry.Status(ctx, requestcontext.Now(ctx), identity)
}

// StatusMany is Status for up to maxStatusBatch identities.
func (s *Service) StatusMany(ctx context.Context, identities []domain.Identity) ([]models.EntryStatus, error) {
	if len(identities) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one identity is required")
	}
	if len(identities) > maxStatusBatch {
		return nil, dErrors.New(dErrors.CodeValidation, "too many identities in one request")
	}
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("status", time.Since(start)) }()
	return s.registry.StatusMany(ctx, requestcontext.Now(ctx), identities)
}

// ValidityWindow exposes the registry's window for clients.
func (s *Service) ValidityWindow() time.Duration {
	return s.registry.ValidityWindow()
}

func (s *Service) logFailure(ctx context.Context, event string, err error, attrs ...any) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		s.logger.ErrorContext(ctx, event,
			append(attrs, "error", err, "request_id", requestcontext.RequestID(ctx))...)
		return
	}
	ports.LogAudit(ctx, s.logger, event, attrs...)
}

func resultLabel(err error) string {
	if reason := models.Reason(err); reason != "" {
		return reason
	}
	return string(dErrors.CodeOf(err))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
}
