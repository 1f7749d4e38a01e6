package http

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"portal/internal/platform/metrics"
)

// ipLimiter hands out one token-bucket limiter per client IP. Buckets live
// for the process lifetime; the key space is bounded by the client population
// of a single school.
type ipLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPLimiter(perMinute, burst int) *ipLimiter {
	return &ipLimiter{
		rps:   rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
	}
}

func (l *ipLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

// newRateLimitMiddleware enforces a per-IP token-bucket limit and answers
// 429 with Retry-After once the bucket is drained.
func newRateLimitMiddleware(perMinute, burst int) func(http.Handler) http.Handler {
	limiter := newIPLimiter(perMinute, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ip == "" {
				ip = "unknown"
			}

			if !limiter.limiter(ip).Allow() {
				metrics.RateLimitDecisions.WithLabelValues("rejected").Inc()
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Muitas tentativas. Aguarde um momento e tente novamente.", http.StatusTooManyRequests)
				return
			}

			metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
