package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/vbonduro/lostfound/internal/auth"
	"github.com/vbonduro/lostfound/internal/domain"
)

type contextKey string

const claimsKey contextKey = "claims"

// authenticated validates the bearer token and stores its claims in the
// request context.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			s.writeError(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}
		claims, err := s.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.logger.Debug("rejected token", "error", err)
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// admin is authenticated restricted to administrators.
func (s *Server) admin(next http.HandlerFunc) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		if claimsFrom(r.Context()).Role != domain.RoleAdmin {
			s.writeError(w, http.StatusForbidden, "administrator access required")
			return
		}
		next(w, r)
	})
}

// claimsFrom returns the claims stored by authenticated. Handlers behind it
// can rely on a non-nil result.
func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
