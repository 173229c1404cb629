// Package web serves the lost-and-found JSON API.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/lostfound/internal/auth"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/service"
)

// Services groups the use cases the API exposes.
type Services struct {
	Items         *service.ItemService
	Matches       *service.MatchService
	Users         *service.UserService
	Notifications *service.NotificationService
}

type Server struct {
	items         *service.ItemService
	matches       *service.MatchService
	users         *service.UserService
	notifications *service.NotificationService
	tokens        *auth.Tokens
	mux           *http.ServeMux
	logger        *slog.Logger
}

func NewServer(svc Services, tokens *auth.Tokens, logger *slog.Logger) *Server {
	s := &Server{
		items:         svc.Items,
		matches:       svc.Matches,
		users:         svc.Users,
		notifications: svc.Notifications,
		tokens:        tokens,
		mux:           http.NewServeMux(),
		logger:        logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.Handle("GET /api/auth/me", s.authenticated(s.handleMe))

	for _, kind := range domain.Kinds {
		prefix := "/api/" + string(kind)
		s.mux.Handle("POST "+prefix, s.authenticated(s.handleReportItem(kind)))
		s.mux.Handle("GET "+prefix, s.authenticated(s.handleListItems(kind)))
		s.mux.Handle("GET "+prefix+"/my", s.authenticated(s.handleListMyItems(kind)))
		s.mux.Handle("GET "+prefix+"/{id}", s.authenticated(s.handleGetItem(kind)))
		s.mux.Handle("DELETE "+prefix+"/{id}", s.authenticated(s.handleDeleteItem(kind)))
		s.mux.Handle("POST "+prefix+"/{id}/returned", s.authenticated(s.handleMarkReturned(kind)))
		s.mux.Handle("POST "+prefix+"/{id}/close", s.authenticated(s.handleCloseItem(kind)))
	}

	s.mux.Handle("GET /api/matches/pending", s.admin(s.handlePendingMatches))
	s.mux.Handle("GET /api/matches/my", s.authenticated(s.handleMyMatches))
	s.mux.Handle("POST /api/matches/generate", s.admin(s.handleGenerateMatches))
	s.mux.Handle("POST /api/matches/{id}/verify", s.admin(s.handleVerifyMatch))

	s.mux.Handle("GET /api/notifications", s.authenticated(s.handleListNotifications))
	s.mux.Handle("GET /api/notifications/count", s.authenticated(s.handleCountNotifications))
	s.mux.Handle("POST /api/notifications/mark-read", s.authenticated(s.handleMarkNotificationRead))

	s.mux.Handle("GET /api/admin/users", s.admin(s.handleListUsers))
	s.mux.Handle("GET /api/admin/users/pending", s.admin(s.handleListPendingUsers))
	s.mux.Handle("POST /api/admin/users/{id}/verify", s.admin(s.handleVerifyUser))
	s.mux.Handle("GET /api/admin/stats", s.admin(s.handleStats))

	s.mux.HandleFunc("GET /uploads/{key}", s.handleGetImage)
}

// securityHeaders sets CSP and related response headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// HTTPServer returns an http.Server for addr with the API as its handler.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
