/*
Package limiter throttles snapshot server routes per client IP.

Each route gets its own token bucket per IP. Buckets that have refilled are
dropped by a janitor goroutine so one-off clients do not accumulate.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/logx"
	"messenger/internal/pkg/metrics"
	"messenger/internal/pkg/resp"
)

// JanitorInterval is how often idle buckets are dropped.
const JanitorInterval = 3 * time.Minute

// IPRateLimiter holds one bucket per client IP for a single route.
type IPRateLimiter struct {
	route string

	mu      sync.RWMutex
	buckets map[string]*rate.Limiter

	r rate.Limit
	b int

	stop chan struct{}
	once sync.Once
}

// NewIPRateLimiter returns a limiter for route allowing r events per second
// with burst b per IP, and starts its janitor. Call Stop to end the janitor.
func NewIPRateLimiter(route string, r rate.Limit, b int) *IPRateLimiter {
	l := &IPRateLimiter{
		route:   route,
		buckets: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
		stop:    make(chan struct{}),
	}

	go l.janitor()

	return l
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	l.mu.RLock()
	bucket, ok := l.buckets[ip]
	l.mu.RUnlock()
	if ok {
		return bucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if bucket, ok = l.buckets[ip]; !ok {
		bucket = rate.NewLimiter(l.r, l.b)
		l.buckets[ip] = bucket
	}
	return bucket
}

// Stop ends the janitor goroutine. It is safe to call more than once.
func (l *IPRateLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *IPRateLimiter) janitor() {
	ticker := time.NewTicker(JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

// sweep drops buckets that are full again, meaning the IP has been idle.
func (l *IPRateLimiter) sweep(now time.Time) int {
	l.mu.Lock()
	removed := 0
	for ip, bucket := range l.buckets {
		if bucket.TokensAt(now) >= float64(bucket.Burst()) {
			delete(l.buckets, ip)
			removed++
		}
	}
	remaining := len(l.buckets)
	l.mu.Unlock()

	if removed > 0 {
		logx.Info("Rate limiter sweep finished.", "route", l.route, "removed", removed, "remaining", remaining)
	}
	return removed
}

// Middleware rejects requests over the limit with ErrRateLimitExceeded (HTTP 429).
// It expects RemoteAddr to hold the client address, as set by chi's RealIP.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown"
		}

		if !l.GetLimiter(ip).Allow() {
			metrics.ThrottledTotal.WithLabelValues(l.route).Inc()
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
