package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultStudentDomain is the email domain students must belong to when
// signing in with Google. It can be overridden with STUDENT_EMAIL_DOMAIN.
const DefaultStudentDomain = "aluno.colegiodossantos.com.br"

// Config aggregates runtime configuration for the portal service.
type Config struct {
	Environment string
	HTTPPort    int
	LogLevel    string

	AllowedOrigins []string

	SophiaTenant   string
	SophiaUser     string
	SophiaPassword string
	SophiaHostname string
	SophiaTokenTTL time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	StudentEmailDomain string

	SessionStore string
	RedisURL     string
	SessionTTL   time.Duration

	LoginRatePerMinute int
	LoginRateBurst     int
}

// Load reads configuration from environment variables with sensible defaults for local development.
func Load() (Config, error) {
	sophiaPassword, err := getEnvOrFile("SOPHIA_PASSWORD", "/run/secrets/portal_sophia_password")
	if err != nil {
		return Config{}, err
	}

	googleSecret, err := getEnvOrFile("GOOGLE_CLIENT_SECRET", "/run/secrets/portal_google_client_secret")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:     parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5000")),
		SophiaTenant:       strings.TrimSpace(os.Getenv("SOPHIA_TENANT")),
		SophiaUser:         strings.TrimSpace(os.Getenv("SOPHIA_USER")),
		SophiaPassword:     strings.TrimSpace(sophiaPassword),
		SophiaHostname:     strings.TrimSpace(os.Getenv("SOPHIA_API_HOSTNAME")),
		GoogleClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		GoogleClientSecret: strings.TrimSpace(googleSecret),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/login/google/callback"),
		StudentEmailDomain: strings.ToLower(getEnv("STUDENT_EMAIL_DOMAIN", DefaultStudentDomain)),
		SessionStore:       strings.ToLower(getEnv("SESSION_STORE", "memory")),
		RedisURL:           getEnv("REDIS_URL", ""),
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "5000"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	tokenTTLSeconds, err := getEnvInt("SOPHIA_TOKEN_TTL_SECONDS", 1800)
	if err != nil {
		return Config{}, err
	}
	cfg.SophiaTokenTTL = time.Duration(tokenTTLSeconds) * time.Second

	sessionTTLHours, err := getEnvInt("SESSION_TTL_HOURS", 12)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(sessionTTLHours) * time.Hour

	if cfg.LoginRatePerMinute, err = getEnvInt("LOGIN_RATE_PER_MINUTE", 10); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateBurst, err = getEnvInt("LOGIN_RATE_BURST", 10); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.SessionStore != "memory" && c.SessionStore != "redis" {
		return fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.SessionStore)
	}
	if c.SessionStore == "redis" && c.RedisURL == "" {
		return fmt.Errorf("SESSION_STORE is redis but REDIS_URL is not set")
	}
	if c.StudentEmailDomain == "" {
		return fmt.Errorf("STUDENT_EMAIL_DOMAIN must not be empty")
	}
	if c.LoginRatePerMinute <= 0 || c.LoginRateBurst <= 0 {
		return fmt.Errorf("login rate limit values must be positive")
	}

	if c.IsDevelopment() {
		return nil
	}

	// Outside development both login paths must be fully configured.
	for name, value := range map[string]string{
		"SOPHIA_TENANT":       c.SophiaTenant,
		"SOPHIA_USER":         c.SophiaUser,
		"SOPHIA_PASSWORD":     c.SophiaPassword,
		"SOPHIA_API_HOSTNAME": c.SophiaHostname,
	} {
		if value == "" {
			return fmt.Errorf("%s is required outside development", name)
		}
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required outside development")
	}

	return nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsDevelopment reports whether the service runs in the development environment.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// SophiaBaseURL builds the tenant-scoped base URL for the Sophia API.
func (c Config) SophiaBaseURL() string {
	return fmt.Sprintf("https://%s/SophiAWebApi/%s", c.SophiaHostname, c.SophiaTenant)
}

// SophiaConfigured reports whether all Sophia settings are present.
func (c Config) SophiaConfigured() bool {
	return c.SophiaTenant != "" && c.SophiaUser != "" && c.SophiaPassword != "" && c.SophiaHostname != ""
}

// GoogleConfigured reports whether the Google OAuth client settings are present.
func (c Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// UseInMemorySessions returns true if the in-memory session store should be used.
func (c Config) UseInMemorySessions() bool {
	return c.SessionStore == "memory"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
