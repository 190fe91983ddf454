// sbbs/handlers/middleware.go
package handlers

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// GetIPAddress extracts the real client IP, trusting proxy headers when set.
func GetIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimit throttles write endpoints per client IP.
func RateLimit(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetIPAddress(r)
			if !app.RateLimiter().GetLimiter(ip).Allow() {
				app.Logger().Warn("Rate limit exceeded", "ip", ip)
				respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded, please wait a moment"}, app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLAN restricts admin endpoints to private or loopback addresses.
func RequireLAN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ipStr := GetIPAddress(r)
		ip := net.ParseIP(ipStr)
		if ip == nil || (!ip.IsPrivate() && !ip.IsLoopback()) {
			http.Error(w, "Forbidden: admin access restricted to LAN", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger emits one structured log line per request.
func RequestLogger(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			app.Logger().Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}
