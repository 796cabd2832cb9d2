package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/guestlist/internal/metrics"
)

// RouterOptions configures the optional parts of the router.
type RouterOptions struct {
	// SignupLimiter and AuthLimiter throttle the public endpoints. Nil
	// disables throttling.
	SignupLimiter Limiter
	AuthLimiter   Limiter
	// CORSOrigin is the front-end origin allowed to call the API.
	CORSOrigin string
	// Metrics exposes GET /metrics.
	Metrics bool
	// WebDir, if set, is served as static files at the root.
	WebDir string
}

// NewRouter builds the HTTP routing tree.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(h.logger))
	r.Use(CORS(opts.CORSOrigin))

	r.Get("/health", HealthCheck)
	if opts.Metrics {
		r.Handle("/metrics", metrics.Handler())
	}

	authLimit := h.RateLimit("auth", opts.AuthLimiter)
	r.Route("/auth", func(r chi.Router) {
		r.With(authLimit).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(authLimit).Post("/reset-password", h.RequestReset)
		r.With(authLimit).Post("/reset-password/confirm", h.ConfirmReset)
		r.With(h.RequireSession).Get("/session", h.Session)
	})

	r.Route("/gigs", func(r chi.Router) {
		r.With(h.OptionalSession, ValidSlug).Get("/{slug}", h.GetGig)
		r.With(h.RateLimit("signup", opts.SignupLimiter), ValidSlug).Post("/{slug}/guests", h.Signup)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Get("/", h.ListGigs)
			r.Post("/", h.CreateGig)
			r.Post("/batch", h.CreateBatch)
			r.Post("/import", h.ImportCalendar)
			r.Get("/feed.ics", h.Feed)

			r.Group(func(r chi.Router) {
				r.Use(ValidSlug)
				r.Patch("/{slug}", h.UpdateGig)
				r.Delete("/{slug}", h.DeleteGig)
				r.Post("/{slug}/close", h.CloseGig)
				r.Post("/{slug}/reopen", h.ReopenGig)
				r.Get("/{slug}/csv", h.ExportCSV)
			})
		})
	})

	r.Route("/guests", func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Patch("/{id}", h.UpdateGuest)
		r.Delete("/{id}", h.DeleteGuest)
	})

	if opts.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.WebDir)))
	}
	return r
}
