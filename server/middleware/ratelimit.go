package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/kbukum/subtitler/errors"
)

// RateLimitConfig configures the per-client limiter on pipeline routes.
type RateLimitConfig struct {
	// RequestsPerMinute is both the refill rate and the burst per key.
	RequestsPerMinute int
	// KeyFunc extracts the limit key. Defaults to the client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit rejects requests over the limit with a 429 RATE_LIMITED body
// and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	rl := newRateLimiter(cfg.RequestsPerMinute, time.Minute)
	return func(c *gin.Context) {
		ok, wait := rl.allow(cfg.KeyFunc(c), time.Now())
		if ok {
			c.Next()
			return
		}
		appErr := apperrors.New(apperrors.ErrCodeRateLimited,
			"Too many translation requests. Please wait a minute and try again.", http.StatusTooManyRequests)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
	}
}

// IPBasedKey returns the client IP.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per key.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	every   rate.Limit
	burst   int
	window  time.Duration
	swept   time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*client),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		window:  window,
	}
}

// allow takes a token for key at now. When none is left it reports how
// long until the next one.
func (rl *rateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.swept) > 5*rl.window {
		rl.sweep(now)
		rl.swept = now
	}

	cl, ok := rl.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops keys idle for a whole window. Their buckets are full again,
// so a fresh limiter is equivalent. Caller holds mu.
func (rl *rateLimiter) sweep(now time.Time) {
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
