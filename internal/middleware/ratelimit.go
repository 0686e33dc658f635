package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/crucial707/blog-api/internal/apierr"
	"golang.org/x/time/rate"
)

// IPRateLimiter limits requests per client IP using a token bucket per IP.
type IPRateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    sync.RWMutex
	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewIPRateLimiter creates a per-IP rate limiter. limit is events per second;
// use PerWindow to express "n requests per window".
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

// PerWindow converts "n requests per window" into a refill rate.
func PerWindow(n int, window time.Duration) rate.Limit {
	if n <= 0 || window <= 0 {
		return rate.Inf
	}
	return rate.Every(window / time.Duration(n))
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.ips[ip]
	l.mu.RUnlock()
	if ok {
		return lim
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	// Double-check after acquiring write lock
	if lim, ok = l.ips[ip]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.limit, l.burst)
	l.ips[ip] = lim
	return lim
}

// Prune drops limiters whose bucket has refilled completely. Such an entry
// behaves exactly like a new one, so removing it never resets a penalty.
// Returns the number of entries removed.
func (l *IPRateLimiter) Prune() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, lim := range l.ips {
		if lim.TokensAt(now) >= float64(l.burst) {
			delete(l.ips, ip)
			n++
		}
	}
	return n
}

// Len reports how many client IPs are currently tracked.
func (l *IPRateLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ips)
}

// clientIP returns the RemoteAddr host without its port. Forwarding headers
// are ignored here; mount chi's RealIP ahead of the limiter when running
// behind a trusted proxy.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware returns a chi-compatible middleware that answers 429 RATE_LIMITED
// when the client IP exceeds the rate. Retry-After carries the wait until the
// next token.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := l.now()
		res := l.getLimiter(clientIP(r)).ReserveN(now, 1)
		if !res.OK() {
			apierr.Write(w, r, apierr.TooManyRequests())
			return
		}
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			w.Header().Set("Retry-After", retryAfter(delay))
			apierr.Write(w, r, apierr.TooManyRequests())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter renders d as whole seconds, rounded up and at least 1.
func retryAfter(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// APIRateLimiter allows perWindow requests per 15 minutes per IP.
func APIRateLimiter(perWindow, burst int) *IPRateLimiter {
	return NewIPRateLimiter(PerWindow(perWindow, 15*time.Minute), burst)
}

// LoginRateLimiter is the stricter limiter for /auth/login: perWindow attempts per 15 minutes per IP.
func LoginRateLimiter(perWindow, burst int) *IPRateLimiter {
	return NewIPRateLimiter(PerWindow(perWindow, 15*time.Minute), burst)
}
