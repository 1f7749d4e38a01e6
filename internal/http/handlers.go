package http

import (
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	sessionCookieName = "portal_session"
)

func newSessionCookie(value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	}
}

func clearedSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	}
}

// redirectWithFlash sends the user back to the login page carrying a
// flash-style code in the query string.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, param, code string) {
	target := "/?" + param + "=" + url.QueryEscape(code)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// clientIP extracts the remote address without the port. chi's RealIP
// middleware has already resolved proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
