package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/resilience"
)

// RateLimitConfig configures per-client request pacing.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate per client. Zero disables
	// the limiter.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// Burst is how many requests a client may send at once.
	Burst int `yaml:"burst" mapstructure:"burst"`
	// PathPrefix restricts limiting to matching paths, e.g. "/api/".
	PathPrefix string `yaml:"path_prefix" mapstructure:"path_prefix"`
	// KeyFunc extracts the client key. Defaults to the remote IP.
	KeyFunc func(*http.Request) string `yaml:"-" mapstructure:"-"`
}

// RateLimit returns middleware that gives every client its own token
// bucket and answers 429 once it is empty. Idle buckets are dropped.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.RequestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerMinute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RemoteIP
	}

	clients := &clientLimiters{
		limiters: make(map[string]*clientLimiter),
		rate:     float64(cfg.RequestsPerMinute) / 60,
		burst:    cfg.Burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.PathPrefix != "" && !strings.HasPrefix(r.URL.Path, cfg.PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			if !clients.get(cfg.KeyFunc(r)).Allow() {
				writeError(w, errors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RemoteIP returns the host part of the request's remote address.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	*resilience.RateLimiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     float64
	burst    int
	swept    time.Time
}

func (c *clientLimiters) get(key string) *resilience.RateLimiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.swept) > idleLimiterTTL {
		for k, l := range c.limiters {
			if now.Sub(l.lastSeen) > idleLimiterTTL {
				delete(c.limiters, k)
			}
		}
		c.swept = now
	}

	l, ok := c.limiters[key]
	if !ok {
		l = &clientLimiter{RateLimiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  "client:" + key,
			Rate:  c.rate,
			Burst: c.burst,
		})}
		c.limiters[key] = l
	}
	l.lastSeen = now
	return l.RateLimiter
}
