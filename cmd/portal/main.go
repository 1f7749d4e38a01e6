package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"portal/internal/auth"
	"portal/internal/config"
	transporthttp "portal/internal/http"
	"portal/internal/platform/logging"
	"portal/internal/platform/metrics"
	"portal/internal/sophia"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	store, cleanup, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	sessions := auth.NewService(store, cfg.SessionTTL)

	sophiaClient := sophia.NewClient(cfg.SophiaBaseURL(), cfg.SophiaUser, cfg.SophiaPassword)
	tokenCache := sophia.NewTokenCache(sophiaClient, cfg.SophiaTokenTTL)
	if !cfg.SophiaConfigured() {
		logger.Warn("sophia api not configured; credential login will fail")
	}

	google, err := buildGoogleAuthenticator(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize google authenticator", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	metrics.RegisterCollectors(registry)

	router := transporthttp.NewRouter(cfg, tokenCache, sophiaClient, google, sessions, registry, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go sweepSessions(ctx, sessions, logger)

	go func() {
		logger.Info("portal listening", "addr", srv.Addr, "session_store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildSessionStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (auth.Store, func(), error) {
	if cfg.UseInMemorySessions() {
		logger.Info("using in-memory session store")
		return auth.NewInMemoryStore(), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = client.Close()
	}

	logger.Info("connected to redis session store")
	return auth.NewRedisStore(client, "portal:session:"), cleanup, nil
}

func buildGoogleAuthenticator(ctx context.Context, cfg config.Config) (*auth.GoogleAuthenticator, error) {
	if !cfg.GoogleConfigured() {
		return nil, nil
	}
	return auth.NewGoogleAuthenticator(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.StudentEmailDomain)
}

// sweepSessions periodically drops expired sessions. The redis store expires
// keys natively, so its sweep is a no-op.
func sweepSessions(ctx context.Context, sessions *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.SweepExpired(ctx)
			if err != nil {
				logger.Error("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
