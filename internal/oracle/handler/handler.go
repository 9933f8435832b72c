package handler

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"proofgate/internal/attestation/models"
	oracleservice "proofgate/internal/oracle/service"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/requestcontext"
)

// maxTokenLen matches the upper bound Turnstile documents for tokens.
const maxTokenLen = 2048

// Service issues attestations for solved challenges.
type Service interface {
	Attest(ctx context.Context, token string, identity domain.Identity) (models.Attestation, error)
}

// AttestRequest is the HTTP request body for POST /oracle/attest.
type AttestRequest struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`

	parsedIdentity domain.Identity
}

func (r *AttestRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	if len(r.Token) > maxTokenLen {
		return dErrors.New(dErrors.CodeValidation, "token is too long")
	}
	identity, err := domain.ParseIdentity(strings.TrimSpace(r.Identity))
	if err != nil {
		return err
	}
	r.parsedIdentity = identity
	return nil
}

// AttestResponse carries the attestation hex-encoded for transport.
type AttestResponse struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
}

func FromAttestation(att models.Attestation) *AttestResponse {
	return &AttestResponse{
		Message:   hex.EncodeToString(att.Message),
		Signature: hex.EncodeToString(att.Signature),
		PublicKey: hex.EncodeToString(att.PublicKey),
	}
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the oracle endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/oracle/attest", h.HandleAttest)
}

// HandleAttest handles POST /oracle/attest.
func (h *Handler) HandleAttest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AttestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	att, err := h.service.Attest(ctx, req.Token, req.parsedIdentity)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "attestation issuance failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteErrorWithReason(w, err, oracleservice.Reason(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAttestation(att))
}
