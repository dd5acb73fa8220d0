package api

import (
	"net/http"

	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/internal/auth"
)

// requireAuth rejects requests without a valid bearer token and stores
// the principal in the request context.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := auth.ParseBearer(r.Header.Get("Authorization"), a.jwtSecret)
		if err != nil {
			a.writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid or missing token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// requireAdmin guards admin-only surfaces. It runs inside requireAuth.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok || !p.IsAdmin() {
			a.writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// actorFrom builds audit attribution from the authenticated principal
// and the request envelope. Unauthenticated requests attribute to SYSTEM.
func actorFrom(r *http.Request) audit.Actor {
	actor := audit.Actor{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if p, ok := auth.FromContext(r.Context()); ok {
		actor.ID = p.ID
		actor.Email = p.Email
	}
	return actor
}
