package rest

import (
	"crypto/rsa"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns a configured chi.Router for the fingerprint enrollment
// and verification API.
//
// Route layout:
//
//	GET    /healthz                          liveness probe (no auth)
//	POST   /api/v1/users                     create user
//	GET    /api/v1/users                     list users (limit/offset)
//	GET    /api/v1/users/{id}                fetch one user
//	DELETE /api/v1/users/{id}                delete a user and its blobs
//	POST   /api/v1/users/{id}/fingerprint    enroll a template
//	GET    /api/v1/users/{id}/fingerprint    download the enrolled template
//	POST   /api/v1/users/{id}/verify         verify probe against one user
//	POST   /api/v1/identify                  identify probe across all users
//
// pubKey is the RSA public key used to verify RS256 Bearer tokens on all
// /api routes. Pass nil to disable JWT validation (dev only).
func NewRouter(srv *Server, pubKey *rsa.PublicKey) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware())

	r.Get("/healthz", srv.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		if pubKey != nil {
			r.Use(JWTMiddleware(pubKey))
		}

		r.Post("/users", srv.handleCreateUser)
		r.Get("/users", srv.handleListUsers)
		r.Get("/users/{id}", srv.handleGetUser)
		r.Delete("/users/{id}", srv.handleDeleteUser)
		r.Post("/users/{id}/fingerprint", srv.handleEnroll)
		r.Get("/users/{id}/fingerprint", srv.handleDownloadFingerprint)
		r.Post("/users/{id}/verify", srv.handleVerify)
		r.Post("/identify", srv.handleIdentify)
	})

	return r
}
