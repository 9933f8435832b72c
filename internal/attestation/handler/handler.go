package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"proofgate/internal/attestation/models"
	"proofgate/pkg/domain"
	dErrors "proofgate/pkg/domain-errors"
	"proofgate/pkg/platform/httputil"
	"proofgate/pkg/platform/middleware/auth"
	"proofgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the attestation operations exposed over HTTP.
type Service interface {
	Verify(ctx context.Context, att models.Attestation) (models.Timestamp, error)
	Interact(ctx context.Context) (models.InteractionRecord, error)
	Status(ctx context.Context, identity domain.Identity) (models.EntryStatus, error)
	StatusMany(ctx context.Context, identities []domain.Identity) ([]models.EntryStatus, error)
}

// Handler wires attestation endpoints to the attestation service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
}

// New constructs an attestation handler with its dependencies.
func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts attestation endpoints on the router. Submitting and
// interacting require a caller identity; status lookups are public.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registry/status/{identity}", h.HandleStatus)
	r.Post("/registry/status", h.HandleStatusBatch)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/attestations", h.HandleSubmit)
		r.Post("/interact", h.HandleInteract)
	})
}

// HandleSubmit handles POST /attestations.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[SubmitAttestationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ts, err := h.service.Verify(ctx, req.Attestation())
	if err != nil {
		h.writeError(ctx, w, "attestation submission failed", err)
		return
	}

	h.logger.InfoContext(ctx, "attestation recorded",
		"request_id", requestID,
		"identity", requestcontext.Identity(ctx).String(),
		"attested_at", int64(ts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleInteract handles POST /interact, the gated operation.
func (h *Handler) HandleInteract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.service.Interact(ctx)
	if err != nil {
		h.writeError(ctx, w, "interaction denied", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleStatus handles GET /registry/status/{identity}.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := domain.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := h.service.Status(ctx, identity)
	if err != nil {
		h.writeError(ctx, w, "status lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromStatus(status))
}

// HandleStatusBatch handles POST /registry/status.
func (h *Handler) HandleStatusBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StatusBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	statuses, err := h.service.StatusMany(ctx, req.ParsedIdentities())
	if err != nil {
		h.writeError(ctx, w, "batch status lookup failed", err)
		return
	}

	resp := StatusBatchResponse{Entries: make([]StatusResponse, 0, len(statuses))}
	for _, status := range statuses {
		resp.Entries = append(resp.Entries, FromStatus(status))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteErrorWithReason(w, err, models.Reason(err))
}
