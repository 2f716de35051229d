package middleware

import (
	"net"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vaughan-dsouza/cloudportal/internal/metrics"
	"github.com/vaughan-dsouza/cloudportal/internal/ratelimit"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

// LoginRateLimit throttles by client IP. Limiter errors fail open.
func LoginRateLimit(limiter ratelimit.Limiter, m *metrics.Metrics, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.WithError(err).Warn("login rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				if m != nil {
					m.LoginThrottledTotal.Inc()
				}
				log.WithField("client", key).Warn("login throttled")
				utils.Fail(w, http.StatusTooManyRequests, "too many login attempts")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP reads RemoteAddr, which RealIP has already resolved when the
// request came through a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
