package api

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"tagme/pkg/logger"
	"tagme/pkg/utils"
)

// GatewayConfig drives the CORS and rate limiting behavior of the
// outer middleware.
type GatewayConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

var httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "tagme_http_requests_total",
	Help: "Requests seen by the gateway middleware.",
}, []string{"method"})

func init() {
	prometheus.MustRegister(httpRequests)
}

// Gateway returns the outer middleware: request logging, CORS
// handling and per-client-IP rate limiting.
func Gateway(cfg GatewayConfig) func(http.Handler) http.Handler {
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// log request (redacts sensitive headers)
			logger.LogRequest(r)
			httpRequests.WithLabelValues(r.Method).Inc()

			// cors preflight
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
				w.Header().Set("Access-Control-Expose-Headers", "Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// allow unauthenticated health checks for probes
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if !limiters.Allow(clientIP(r)) {
				logger.Warn("request_rate_limited", "remote", r.RemoteAddr, "path", r.URL.Path)
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
