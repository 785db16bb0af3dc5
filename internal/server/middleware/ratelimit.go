package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxClients bounds the per-client limiter table; idle entries are pruned
// once it is exceeded.
const maxClients = 10000

// clientLimiters hands out one token bucket per client IP.
type clientLimiters struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	idle     time.Duration
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (c *clientLimiters) get(ip string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.limiters[ip]; ok {
		cl.lastSeen = now
		return cl.limiter
	}
	if len(c.limiters) >= maxClients {
		for k, cl := range c.limiters {
			if now.Sub(cl.lastSeen) > c.idle {
				delete(c.limiters, k)
			}
		}
	}
	cl := &clientLimiter{limiter: rate.NewLimiter(c.rps, c.burst), lastSeen: now}
	c.limiters[ip] = cl
	return cl.limiter
}

// RateLimit returns middleware that allows each client IP rps requests per
// second with the given burst. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	clients := &clientLimiters{
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		limiters: make(map[string]*clientLimiter),
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !clients.get(extractClientIP(r), time.Now()).Allow() {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractClientIP attempts to determine the real client IP from standard
// proxy headers, falling back to the direct remote address.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
