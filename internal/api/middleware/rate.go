package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/osa911/portfolio/internal/api/dto/common"
	"github.com/osa911/portfolio/internal/logging"
	"github.com/osa911/portfolio/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for the per-client throttle
type RateLimitConfig struct {
	// Requests per second
	RPS float64
	// Burst size (number of requests that can be made in a single burst)
	Burst int
	// IdleTTL is how long an unused client limiter is kept
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientThrottle is a coarse token bucket per client IP that sits in front of
// every route. The contact window limit is enforced separately.
type ClientThrottle struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewClientThrottle(cfg RateLimitConfig) *ClientThrottle {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &ClientThrottle{
		cfg:     cfg,
		clients: make(map[string]*clientLimiter),
	}
}

func (t *ClientThrottle) limiterFor(ip string, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	cl, ok := t.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(t.cfg.RPS), t.cfg.Burst)}
		t.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// Cleanup drops limiters idle for longer than IdleTTL and returns how many.
func (t *ClientThrottle) Cleanup(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for ip, cl := range t.clients {
		if now.Sub(cl.lastSeen) > t.cfg.IdleTTL {
			delete(t.clients, ip)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (t *ClientThrottle) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Cleanup(now)
		}
	}
}

// Middleware rejects clients that exceed their token bucket with 429.
func (t *ClientThrottle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		limiter := t.limiterFor(utils.GetRealIP(c), now)

		r := limiter.ReserveN(now, 1)
		if !r.OK() {
			t.reject(c, now, time.Second)
			return
		}
		if delay := r.DelayFrom(now); delay > 0 {
			r.CancelAt(now)
			t.reject(c, now, delay)
			return
		}

		c.Next()
	}
}

func (t *ClientThrottle) reject(c *gin.Context, now time.Time, wait time.Duration) {
	const message = "Too many requests. Please slow down."

	c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	logging.GetGlobalLogger().LogHTTPError(c.Request.Method, c.Request.URL.Path, utils.GetRealIP(c),
		http.StatusTooManyRequests, message, nil)

	resp := common.NewErrorResponse(common.ErrCodeTooManyRequests, message, nil)
	resetTime := now.Add(wait).UTC()
	resp.ResetTime = &resetTime
	c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
}
