package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/guestlist/internal/auth"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/service"
)

// maxUpload bounds calendar uploads.
const maxUpload = 10 << 20

// ListGigs handles GET /gigs
// Returns every list with guest totals, newest date first.
func (h *Handler) ListGigs(w http.ResponseWriter, r *http.Request) {
	gigs, err := h.gigs.ListGigs(r.Context())
	if err != nil {
		h.fail(w, r, err, "", "Failed to fetch gigs")
		return
	}
	writeJSON(w, http.StatusOK, gigs)
}

// CreateGig handles POST /gigs
func (h *Handler) CreateGig(w http.ResponseWriter, r *http.Request) {
	var req model.CreateGigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	gig, err := h.gigs.CreateGig(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "", "Failed to create gig")
		return
	}
	writeJSON(w, http.StatusCreated, gig)
}

// CreateBatch handles POST /gigs/batch
// Creates every list in the payload or none of them.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req model.BatchCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	gigs, err := h.gigs.CreateBatch(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "", "Failed to create gigs")
		return
	}
	writeJSON(w, http.StatusCreated, model.BatchCreateResponse{
		Success: true,
		Count:   len(gigs),
		Gigs:    gigs,
	})
}

// ImportCalendar handles POST /gigs/import
// Accepts a multipart "file" (.ics or .zip) with optional "from", "to"
// (YYYY-MM-DD) and "create" fields.
func (h *Handler) ImportCalendar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Could not read upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A .ics or .zip file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file content")
		return
	}
	if len(data) > maxUpload {
		writeError(w, http.StatusBadRequest, "File is too large")
		return
	}

	req := service.ImportRequest{Filename: header.Filename, Data: data}
	if req.From, err = optionalDate(r.FormValue("from")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	if req.To, err = optionalDate(r.FormValue("to")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date")
		return
	}
	if v := r.FormValue("create"); v != "" {
		if req.Create, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "create must be true or false")
			return
		}
	}

	res, err := h.gigs.Import(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "", "Failed to import calendar")
		return
	}
	status := http.StatusOK
	if len(res.Created) > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func optionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Feed handles GET /gigs/feed.ics
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	ics, err := h.gigs.Feed(r.Context())
	if err != nil {
		h.fail(w, r, err, "", "Failed to build calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="guestlists.ics"`)
	_, _ = io.WriteString(w, ics)
}

// GetGig handles GET /gigs/{slug}
// Anonymous callers get the public sign-up view; an admin session gets the
// full guest list.
func (h *Handler) GetGig(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if _, ok := auth.SubjectFrom(r.Context()); ok {
		gig, err := h.gigs.GetGig(r.Context(), slug)
		if err != nil {
			h.fail(w, r, err, "Gig not found", "Failed to fetch gig")
			return
		}
		writeJSON(w, http.StatusOK, gig)
		return
	}

	gig, err := h.gigs.PublicGig(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err, "Gig not found", "Failed to fetch gig")
		return
	}
	writeJSON(w, http.StatusOK, gig)
}

// UpdateGig handles PATCH /gigs/{slug}
func (h *Handler) UpdateGig(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateGigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	gig, err := h.gigs.UpdateGig(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		h.fail(w, r, err, "Gig not found", "Failed to update gig")
		return
	}
	writeJSON(w, http.StatusOK, gig)
}

// CloseGig handles POST /gigs/{slug}/close
func (h *Handler) CloseGig(w http.ResponseWriter, r *http.Request) {
	h.setClosed(w, r, true)
}

// ReopenGig handles POST /gigs/{slug}/reopen
func (h *Handler) ReopenGig(w http.ResponseWriter, r *http.Request) {
	h.setClosed(w, r, false)
}

func (h *Handler) setClosed(w http.ResponseWriter, r *http.Request, closed bool) {
	gig, err := h.gigs.SetClosed(r.Context(), chi.URLParam(r, "slug"), closed)
	if err != nil {
		h.fail(w, r, err, "Gig not found", "Failed to update gig")
		return
	}
	writeJSON(w, http.StatusOK, gig)
}

// DeleteGig handles DELETE /gigs/{slug}
func (h *Handler) DeleteGig(w http.ResponseWriter, r *http.Request) {
	if err := h.gigs.DeleteGig(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.fail(w, r, err, "Gig not found", "Failed to delete gig")
		return
	}
	writeSuccess(w)
}

// ExportCSV handles GET /gigs/{slug}/csv[?newOnly=true]
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	newOnly := r.URL.Query().Get("newOnly") == "true"

	export, err := h.gigs.ExportCSV(r.Context(), chi.URLParam(r, "slug"), newOnly)
	if err != nil {
		h.fail(w, r, err, "Gig not found", "Failed to generate CSV")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	_, _ = w.Write(export.Data)
}

// Signup handles POST /gigs/{slug}/guests
// Public endpoint; the capacity decision and insert are atomic per gig.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	guest, err := h.gigs.Signup(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		h.fail(w, r, err, "Gig not found", "Failed to sign up. Please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, guest)
}

// UpdateGuest handles PATCH /guests/{id}
func (h *Handler) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateGuestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	guest, err := h.gigs.UpdateGuest(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err, "Guest not found", "Failed to update guest")
		return
	}
	writeJSON(w, http.StatusOK, guest)
}

// DeleteGuest handles DELETE /guests/{id}
func (h *Handler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	if err := h.gigs.DeleteGuest(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, "Guest not found", "Failed to delete guest")
		return
	}
	writeSuccess(w)
}
