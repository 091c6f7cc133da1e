package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
)

// RateLimiter keeps one token bucket per client key. A client may burst up
// to limit requests and regains limit tokens per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	every   rate.Limit
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts evicting idle clients
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(limit, window, time.Now)
	go rl.cleanup(window * 2)
	return rl
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Stop ends the eviction goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evict(rl.now().Add(-rl.window * 2))
		}
	}
}

func (rl *RateLimiter) evict(before time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if c.lastSeen.Before(before) {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) get(key string, now time.Time) *client {
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c
}

// Allow consumes a token for key and reports whether one was available
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	return rl.get(key, now).limiter.AllowN(now, 1)
}

// Remaining returns the whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[key]
	if !ok {
		return rl.limit
	}
	tokens := c.limiter.TokensAt(rl.now())
	if tokens < 0 {
		return 0
	}
	return int(math.Floor(tokens))
}

// Limit returns the burst size
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// RateLimitOption customizes RateLimit
type RateLimitOption func(*rateLimitOptions)

type rateLimitOptions struct {
	keyFunc func(*gin.Context) string
	onLimit func(scope string)
	scope   string
}

// WithKeyFunc changes how clients are identified (default: client IP)
func WithKeyFunc(fn func(*gin.Context) string) RateLimitOption {
	return func(o *rateLimitOptions) { o.keyFunc = fn }
}

// WithRejectHook is called with the scope of every rejected request
func WithRejectHook(scope string, fn func(scope string)) RateLimitOption {
	return func(o *rateLimitOptions) {
		o.scope = scope
		o.onLimit = fn
	}
}

// RateLimit returns a rate limiting middleware
func RateLimit(limiter *RateLimiter, opts ...RateLimitOption) gin.HandlerFunc {
	o := rateLimitOptions{keyFunc: ClientKey, scope: "global"}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		key := o.scope + ":" + o.keyFunc(c)

		if !limiter.Allow(key) {
			if o.onLimit != nil {
				o.onLimit(o.scope)
			}
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(limiter.window.Seconds()/float64(limiter.limit)))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				getRequestIDFromContext(c),
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}

// ClientKey identifies a client by user id when authenticated, else by IP
func ClientKey(c *gin.Context) string {
	if id := GetJWTUserID(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}
