// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/guestlist/internal/auth"
	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
	"github.com/Shivanand-hulikatti/guestlist/internal/service"
)

// Handler holds all HTTP handlers for the guest list API.
type Handler struct {
	gigs   *service.GigService
	auth   *service.AuthService
	signer *auth.Signer
	// secure marks the session cookie Secure (production only).
	secure bool
	logger *slog.Logger
}

// New constructs a Handler.
func New(gigs *service.GigService, authSvc *service.AuthService, signer *auth.Signer, secure bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{gigs: gigs, auth: authSvc, signer: signer, secure: secure, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// fail maps a service error onto the JSON error envelope. notFound is the
// message for a missing resource; anything unrecognised is logged and
// reported as internal with the fallback message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var (
		validation *service.ValidationError
		maxErr     *capacity.MaxPerSignupError
		remErr     *capacity.RemainingError
		capErr     *capacity.CapBelowTotalError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   validation.Message,
			Details: validation.Details,
		})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, capacity.ErrClosed):
		writeError(w, http.StatusBadRequest, "This guest list is closed")
	case errors.Is(err, capacity.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
	case errors.Is(err, capacity.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "This email is already on the guest list")
	case errors.As(err, &maxErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Maximum %d guests per signup", maxErr.Max))
	case errors.Is(err, capacity.ErrFull):
		writeError(w, http.StatusBadRequest, "Sorry, the guest list is full!")
	case errors.As(err, &remErr):
		writeError(w, http.StatusBadRequest, remainingMessage(remErr.Remaining))
	case errors.As(err, &capErr):
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot set guest cap below current guest count (%d)", capErr.Total))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidResetLink):
		writeError(w, http.StatusBadRequest, "Invalid or expired reset link")
	default:
		h.logger.ErrorContext(r.Context(), fallback, "err", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func remainingMessage(n int) string {
	if n == 1 {
		return "Only 1 spot remaining"
	}
	return fmt.Sprintf("Only %d spots remaining", n)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
