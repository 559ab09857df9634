package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// limiter is a fixed-window per-IP counter. Windows reset lazily on the
// first request after expiry; a background sweep drops IPs that never
// came back so the map cannot grow unbounded.
type limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

type window struct {
	count int
	until time.Time
}

func newLimiter(limit int, period time.Duration) *limiter {
	l := &limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}
	go l.sweep()
	return l
}

// allow counts one request for ip and reports whether it is still within
// the window's limit.
func (l *limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[ip]
	if !ok || now.After(w.until) {
		w = &window{until: now.Add(l.period)}
		l.windows[ip] = w
	}
	w.count++
	return w.count <= l.limit
}

func (l *limiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, w := range l.windows {
			if now.After(w.until) {
				delete(l.windows, ip)
				purged++
			}
		}
		remaining := len(l.windows)
		l.mu.Unlock()
		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter windows purged")
		}
	}
}

var loginLimiter = newLimiter(20, time.Minute)

// LoginRateLimiter caps login attempts at 20 per minute per IP. Credential
// stuffing is the threat here, so the envelope stays deliberately vague.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loginLimiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Too many login attempts. Try again in 1 minute."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general per-IP API limiter installed on the whole
// engine.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	l := newLimiter(limit, period)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.Header("Retry-After", time.Now().Add(period).Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}
