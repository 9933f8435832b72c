// Package service is the oracle: it checks a human-verification challenge and
// signs an attestation for the requesting identity at the oracle's clock.
package service

import (
	"context"
	"errors"
	"log/slog"

	"proofgate/internal/attestation/models"
	"proofgate/internal/oracle/challenge"
	"proofgate/internal/oracle/metrics"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/requestcontext"
)

// Signer produces attestations with the oracle key.
type Signer interface {
	Sign(identity domain.Identity, ts models.Timestamp) (models.Attestation, error)
}

type Service struct {
	challenges challenge.Verifier
	signer     Signer
	logger     *slog.Logger
	metrics    *metrics.Metrics
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

func New(challenges challenge.Verifier, signer Signer, opts ...Option) (*Service, error) {
	if challenges == nil {
		return nil, errors.New("challenge verifier is required")
	}
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	svc := &Service{
		challenges: challenges,
		signer:     signer,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Attest verifies token and, on success, signs (identity, now).
func (s *Service) Attest(ctx context.Context, token string, identity domain.Identity) (models.Attestation, error) {
	if identity.IsZero() {
		return models.Attestation{}, dErrors.New(dErrors.CodeValidation, "identity is required")
	}

	if err := s.challenges.Verify(ctx, token, requestcontext.ClientIP(ctx)); err != nil {
		coded := codeChallengeError(err)
		s.metrics.IncrementIssued(Reason(coded))
		s.logger.WarnContext(ctx, "challenge verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"identity", identity.String(),
			"error", err,
		)
		return models.Attestation{}, coded
	}

	att, err := s.signer.Sign(identity, models.FromTime(requestcontext.Now(ctx)))
	if err != nil {
		s.metrics.IncrementIssued("sign_failed")
		return models.Attestation{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign attestation")
	}

	s.metrics.IncrementIssued("issued")
	s.logger.InfoContext(ctx, "attestation issued",
		"request_id", requestcontext.RequestID(ctx),
		"identity", identity.String(),
		"client_agent", requestcontext.ClientAgent(ctx),
	)
	return att, nil
}

func codeChallengeError(err error) error {
	switch {
	case errors.Is(err, challenge.ErrChallengeRejected):
		return dErrors.Wrap(err, dErrors.CodeForbidden, "challenge was not solved")
	case errors.Is(err, challenge.ErrChallengeUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "challenge provider is unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "challenge verification failed")
	}
}

// Reason returns the machine-readable reason for a challenge error, or "".
func Reason(err error) string {
	switch {
	case errors.Is(err, challenge.ErrChallengeRejected):
		return "challenge_rejected"
	case errors.Is(err, challenge.ErrChallengeUnavailable):
		return "challenge_unavailable"
	default:
		return ""
	}
}
