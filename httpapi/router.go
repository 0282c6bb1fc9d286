// Package httpapi exposes the authentication engine over HTTP. It is
// the boundary translator: engine errors are classified once, here,
// into status codes and uniform JSON bodies.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authcore "github.com/tendera/authcore"
	"github.com/tendera/authcore/middleware"
	"github.com/tendera/authcore/permission"
)

// Server holds the handler dependencies.
type Server struct {
	engine    *authcore.Engine
	log       authcore.Logger
	cookieTTL time.Duration
	secure    bool
}

// Option tweaks Server construction.
type Option func(*Server)

// WithCookieTTL sets the session cookie lifetime. Defaults to 30 days.
func WithCookieTTL(d time.Duration) Option {
	return func(s *Server) { s.cookieTTL = d }
}

// WithSecureCookies marks session cookies Secure.
func WithSecureCookies() Option {
	return func(s *Server) { s.secure = true }
}

// NewServer builds a Server around the engine.
func NewServer(engine *authcore.Engine, log authcore.Logger, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		log:       log,
		cookieTTL: 30 * 24 * time.Hour,
	}
	if s.log == nil {
		s.log = authcore.NopLogger()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the full API route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	// Wildcard origins without credentials: cross-origin clients
	// authenticate with the bearer token from the response body, not
	// the session cookie.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	protect := middleware.Protect(s.engine)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/verify-otp", s.handleVerifyOTP)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Patch("/reset-password/{token}", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Patch("/update-password", s.handleUpdatePassword)
			r.Get("/me", s.handleMe)
			r.Patch("/me", s.handleUpdateMe)
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(protect)
		r.Use(middleware.RequirePermission(permission.ManageUsers))
		r.Get("/", s.handleListUsers)
		r.Get("/{id}", s.handleGetUser)
		r.Patch("/{id}", s.handleAdminUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	return r
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
