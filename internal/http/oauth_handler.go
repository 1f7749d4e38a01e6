package http

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"portal/internal/auth"
	"portal/internal/platform/metrics"
)

const (
	oauthStateCookieName = "portal_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
)

type googleAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error)
	IsEmailAllowed(email string) bool
}

// OAuthHandler drives the Google login flow for students.
type OAuthHandler struct {
	google       googleAuthenticator
	sessions     *auth.Service
	logger       *slog.Logger
	secureCookie bool
}

// NewOAuthHandler creates an OAuthHandler. google may be nil when the OAuth
// client is not configured; the routes then fail with a flash message.
func NewOAuthHandler(google googleAuthenticator, sessions *auth.Service, env string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		google:       google,
		sessions:     sessions,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// Initiate handles GET /login/google: sets the CSRF state cookie and
// redirects to Google's consent screen.
func (h *OAuthHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		redirectWithFlash(w, r, "error", "google_unavailable")
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		redirectWithFlash(w, r, "error", "oauth_error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/login/google",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateCookieTTL.Seconds()),
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /login/google/callback: verifies the state, exchanges
// the code, checks the student domain, and issues a session.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		redirectWithFlash(w, r, "error", "google_unavailable")
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("oauth callback: missing state cookie")
		h.fail(w, r, "oauth_error")
		return
	}

	stateParam := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(stateParam), []byte(stateCookie.Value)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		h.fail(w, r, "oauth_error")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Path:     "/login/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		h.fail(w, r, "oauth_error")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.fail(w, r, "oauth_error")
		return
	}

	claims, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		h.fail(w, r, "oauth_error")
		return
	}

	if claims.Email == "" {
		h.logger.Warn("oauth callback: id_token missing email claim")
		h.fail(w, r, "oauth_error")
		return
	}

	if !claims.EmailVerified {
		h.logger.Warn("oauth callback: email not verified", "email", claims.Email)
		h.fail(w, r, "email_not_verified")
		return
	}

	if !h.google.IsEmailAllowed(claims.Email) {
		h.logger.Warn("oauth callback: email domain not allowed", "email", claims.Email)
		metrics.LoginAttempts.WithLabelValues(auth.MethodGoogle, "denied").Inc()
		h.fail(w, r, "access_denied")
		return
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = "Estudante"
	}

	token, err := h.sessions.Issue(r.Context(), auth.Subject{
		ID:     claims.Sub,
		Name:   name,
		Email:  strings.ToLower(claims.Email),
		Method: auth.MethodGoogle,
	})
	if err != nil {
		h.logger.Error("oauth callback: session issue failed", "error", err)
		h.fail(w, r, "system_error")
		return
	}

	http.SetCookie(w, newSessionCookie(token, h.sessions.TTL(), h.secureCookie))

	h.logger.Info("login successful", "method", auth.MethodGoogle, "email", claims.Email)
	metrics.LoginAttempts.WithLabelValues(auth.MethodGoogle, "success").Inc()
	http.Redirect(w, r, "/portal", http.StatusSeeOther)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, code string) {
	if code != "access_denied" {
		metrics.LoginAttempts.WithLabelValues(auth.MethodGoogle, "error").Inc()
	}
	redirectWithFlash(w, r, "error", code)
}
