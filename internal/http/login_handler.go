package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"portal/internal/auth"
	"portal/internal/platform/metrics"
	"portal/internal/sophia"
)

// systemTokenSource yields a valid Sophia system token, normally via the
// in-memory token cache.
type systemTokenSource interface {
	SystemToken(ctx context.Context) (string, error)
}

// credentialValidator checks a code/password pair against Sophia.
type credentialValidator interface {
	ValidateLogin(ctx context.Context, token, code, password string) (sophia.Guardian, error)
}

// LoginHandler serves the credential-based login page and form submission.
type LoginHandler struct {
	tokens       systemTokenSource
	validator    credentialValidator
	sessions     *auth.Service
	logger       *slog.Logger
	secureCookie bool
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(tokens systemTokenSource, validator credentialValidator, sessions *auth.Service, env string, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		tokens:       tokens,
		validator:    validator,
		sessions:     sessions,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// Show handles GET /. A request that already holds a valid session goes
// straight to the portal.
func (h *LoginHandler) Show(w http.ResponseWriter, r *http.Request) {
	if h.hasValidSession(r) {
		http.Redirect(w, r, "/portal", http.StatusSeeOther)
		return
	}

	data := loginPageData{
		Error:  flashMessage(r.URL.Query().Get("error")),
		Notice: noticeMessage(r.URL.Query().Get("notice")),
	}
	renderPage(w, h.logger, http.StatusOK, "login.html", data)
}

// Submit handles POST /: validates the code/password pair against Sophia and
// establishes a session on success.
func (h *LoginHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.hasValidSession(r) {
		http.Redirect(w, r, "/portal", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	code := strings.TrimSpace(r.PostFormValue("codigo"))
	password := r.PostFormValue("senha")

	if code == "" || password == "" {
		h.renderLoginError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	systemToken, err := h.tokens.SystemToken(r.Context())
	if err != nil {
		h.logger.Error("system token unavailable", "error", err)
		metrics.LoginAttempts.WithLabelValues(auth.MethodSophia, "error").Inc()
		h.renderLoginError(w, http.StatusOK, "system_error")
		return
	}

	guardian, err := h.validator.ValidateLogin(r.Context(), systemToken, code, password)
	if err != nil {
		if errors.Is(err, sophia.ErrAccessDenied) {
			h.logger.Warn("failed login attempt", "code", code, "ip", clientIP(r))
			metrics.LoginAttempts.WithLabelValues(auth.MethodSophia, "denied").Inc()
			h.renderLoginError(w, http.StatusOK, "invalid_credentials")
			return
		}
		h.logger.Error("login validation failed", "error", err)
		metrics.LoginAttempts.WithLabelValues(auth.MethodSophia, "error").Inc()
		h.renderLoginError(w, http.StatusOK, "system_error")
		return
	}

	token, err := h.sessions.Issue(r.Context(), auth.Subject{
		ID:     guardian.ID,
		Name:   guardian.Name,
		Method: auth.MethodSophia,
	})
	if err != nil {
		h.logger.Error("session issue failed", "error", err)
		metrics.LoginAttempts.WithLabelValues(auth.MethodSophia, "error").Inc()
		h.renderLoginError(w, http.StatusOK, "system_error")
		return
	}

	http.SetCookie(w, newSessionCookie(token, h.sessions.TTL(), h.secureCookie))

	h.logger.Info("login successful", "method", auth.MethodSophia, "code", code)
	metrics.LoginAttempts.WithLabelValues(auth.MethodSophia, "success").Inc()
	http.Redirect(w, r, "/portal", http.StatusSeeOther)
}

func (h *LoginHandler) renderLoginError(w http.ResponseWriter, status int, code string) {
	renderPage(w, h.logger, status, "login.html", loginPageData{Error: flashMessage(code)})
}

func (h *LoginHandler) hasValidSession(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	session, err := h.sessions.Validate(r.Context(), cookie.Value)
	return err == nil && session != nil
}
