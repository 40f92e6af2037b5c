package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"profile-report/internal/shared/server/respond"
)

// RateLimitRule is a token bucket: Rate tokens per second, Burst capacity.
// Routes sharing a Scope share one bucket per principal; an empty Scope
// keys the bucket by route.
type RateLimitRule struct {
	Rate  float64
	Burst int
	Scope string
}

// idleTTL is how long an unused bucket is kept. It exceeds the refill time of
// PerMinute rules, so evicting a bucket never grants tokens it would not have
// regained anyway.
const idleTTL = 10 * time.Minute

// PerMinute builds a rule allowing n requests per minute with burst n.
func PerMinute(n int) RateLimitRule {
	if n <= 0 {
		return RateLimitRule{}
	}
	return RateLimitRule{Rate: float64(n) / 60.0, Burst: n}
}

// RateLimiter keeps one limiter per principal. It rejects; it never queues.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter constructs a RateLimiter. A nil clock uses time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		now:      now,
	}
}

// RateLimit applies rule per authenticated user (falling back to client IP).
func RateLimit(limiter *RateLimiter, rule RateLimitRule) gin.HandlerFunc {
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	return func(c *gin.Context) {
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = strings.TrimSpace(c.ClientIP())
		}
		scope := rule.Scope
		if scope == "" {
			scope = c.FullPath()
		}
		allowed, retryAfter := limiter.Allow(principal+"|"+scope, rule)
		if allowed {
			c.Next()
			return
		}
		retryAfterSeconds := int(math.Ceil(retryAfter.Seconds()))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, try again shortly.", gin.H{
			"retryAfterMs": retryAfter.Milliseconds(),
		})
	}
}

// Allow reports whether key may proceed under rule and, if not, how long to wait.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	l.sweepLocked(now)
	b, ok := l.limiters[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.limiters[key] = b
	}
	b.seen = now
	lim := b.lim
	l.mu.Unlock()

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(now)
	if delay <= 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

// sweepLocked drops buckets idle for longer than idleTTL, at most once per
// idleTTL.
func (l *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < idleTTL {
		return
	}
	l.lastSweep = now
	for key, b := range l.limiters {
		if now.Sub(b.seen) > idleTTL {
			delete(l.limiters, key)
		}
	}
}

// Len returns the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
