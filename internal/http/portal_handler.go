package http

import (
	"log/slog"
	"net/http"
	"strings"

	"portal/internal/auth"
)

// PortalHandler serves the protected portal page and logout.
type PortalHandler struct {
	sessions     *auth.Service
	logger       *slog.Logger
	secureCookie bool
}

// NewPortalHandler creates a PortalHandler.
func NewPortalHandler(sessions *auth.Service, env string, logger *slog.Logger) *PortalHandler {
	return &PortalHandler{
		sessions:     sessions,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
	}
}

// Show handles GET /portal. The session middleware has already placed the
// session in the request context.
func (h *PortalHandler) Show(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		redirectWithFlash(w, r, "notice", "login_required")
		return
	}

	renderPage(w, h.logger, http.StatusOK, "portal.html", portalPageData{Name: session.SubjectName})
}

// Logout handles GET /logout: revokes the session, clears the cookie, and
// returns to the login page.
func (h *PortalHandler) Logout(w http.ResponseWriter, r *http.Request) {
	subjectID := "desconhecido"
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if session, err := h.sessions.Validate(r.Context(), cookie.Value); err == nil && session != nil {
			subjectID = session.SubjectID
		}
		if err := h.sessions.Revoke(r.Context(), cookie.Value); err != nil {
			h.logger.Error("session revoke failed", "error", err)
		}
	}

	http.SetCookie(w, clearedSessionCookie(h.secureCookie))

	h.logger.Info("logout", "subject_id", subjectID)
	redirectWithFlash(w, r, "notice", "logged_out")
}
