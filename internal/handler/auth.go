package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/guestlist/internal/auth"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// Login handles POST /auth/login
// Sets the session cookie on success. Unknown emails and wrong passwords
// get the same 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "", "Internal server error")
		return
	}
	http.SetCookie(w, auth.SessionCookie(token, h.secure))
	writeSuccess(w)
}

// Logout handles POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie(h.secure))
	writeSuccess(w)
}

// Session handles GET /auth/session
// Returns the signed-in admin.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.SubjectFrom(r.Context())
	writeJSON(w, http.StatusOK, sub)
}

// RequestReset handles POST /auth/reset-password
// Always reports success for a well-formed request so the admin email
// cannot be discovered.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.auth.RequestReset(r.Context(), req.Email); err != nil {
		h.fail(w, r, err, "", "Internal server error")
		return
	}
	writeSuccess(w)
}

// ConfirmReset handles POST /auth/reset-password/confirm
func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.auth.ConfirmReset(r.Context(), req); err != nil {
		h.fail(w, r, err, "", "Internal server error")
		return
	}
	writeSuccess(w)
}
