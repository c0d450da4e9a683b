package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dcaplatform/authcore/internal/application"
)

// Handler is the HTTP adapter entrypoint for auth and license use-cases.
// Keeping only application dependencies here preserves clean adapter
// boundaries.
type Handler struct {
	auth     *application.AuthService
	sessions *application.SessionManager
	licenses *application.LicenseService
}

// NewHandler constructs an HTTP handler bound to the application services.
func NewHandler(auth *application.AuthService, sessions *application.SessionManager, licenses *application.LicenseService) *Handler {
	return &Handler{auth: auth, sessions: sessions, licenses: licenses}
}

// NewRouter registers HTTP routes and the middleware stack.
// Centralizing routes here keeps auth and error behavior consistent across
// endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)
		r.Post("/logout", handler.logout)
		r.Post("/password/score", handler.passwordScore)
		r.Post("/password/suggest", handler.passwordSuggest)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Get("/sessions", handler.listSessions)
			r.Delete("/sessions/{session_id}", handler.revokeSession)
			r.Delete("/sessions", handler.revokeAllSessions)
		})
	})

	r.Route("/license/v1", func(r chi.Router) {
		r.Post("/validate", handler.validateLicense)
		r.Post("/activate", handler.activateLicense)
		r.Post("/deactivate", handler.deactivateLicense)
		r.Post("/offline/verify", handler.verifyOfflineCode)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/keys", handler.issueLicense)
			r.Post("/keys/batch", handler.issueLicenseBatch)
			r.Post("/keys/{key}/revoke", handler.revokeLicense)
			r.Post("/keys/{key}/suspend", handler.suspendLicense)
			r.Post("/keys/{key}/reactivate", handler.reactivateLicense)
			r.Get("/keys/{key}/stats", handler.licenseStats)
		})
	})

	return r
}
