package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LoginAttempts counts login attempts by method (sophia, google) and outcome.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "login_attempts_total", Help: "Login attempts by method and outcome."},
		[]string{"method", "outcome"},
	)
	// SophiaTokenCache counts token cache activity (hit, refresh, error).
	SophiaTokenCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "sophia_token_cache_total", Help: "System token cache events."},
		[]string{"event"},
	)
	// RateLimitDecisions counts limiter outcomes on guarded routes.
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "portal", Name: "rate_limit_decisions_total", Help: "Requests allowed or rejected by the rate limiter."},
		[]string{"decision"},
	)
)

// RegisterCollectors registers all portal collectors on the given registerer.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(SophiaTokenCache)
	reg.MustRegister(RateLimitDecisions)
}
