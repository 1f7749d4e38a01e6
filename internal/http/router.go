package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portal/internal/auth"
	"portal/internal/config"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(
	cfg config.Config,
	tokens systemTokenSource,
	validator credentialValidator,
	google *auth.GoogleAuthenticator,
	sessions *auth.Service,
	registry *prometheus.Registry,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	// Assign through a local so an absent authenticator stays a nil interface.
	var googleAuth googleAuthenticator
	if google != nil {
		googleAuth = google
	} else {
		logger.Warn("google oauth not configured; student login is unavailable")
	}

	loginHandler := NewLoginHandler(tokens, validator, sessions, cfg.Environment, logger)
	oauthHandler := NewOAuthHandler(googleAuth, sessions, cfg.Environment, logger)
	portalHandler := NewPortalHandler(sessions, cfg.Environment, logger)

	// Login surface, brute-force limited per IP.
	r.Group(func(r chi.Router) {
		r.Use(newRateLimitMiddleware(cfg.LoginRatePerMinute, cfg.LoginRateBurst))
		r.Get("/", loginHandler.Show)
		r.Post("/", loginHandler.Submit)
		r.Get("/login/google", oauthHandler.Initiate)
		r.Get("/login/google/callback", oauthHandler.Callback)
	})

	r.Group(func(r chi.Router) {
		r.Use(newSessionMiddleware(sessions, logger))
		r.Get("/portal", portalHandler.Show)
	})

	r.Get("/logout", portalHandler.Logout)

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
