package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newRateLimiter(limit, window, clock.Now), clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows a burst up to the limit", func(t *testing.T) {
		limiter, _ := newTestLimiter(5, time.Minute)
		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
		assert.Equal(t, 0, limiter.Remaining("client1"))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		limiter, _ := newTestLimiter(2, time.Minute)
		assert.True(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
		assert.Equal(t, 2, limiter.Remaining("unknown"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter, clock := newTestLimiter(10, time.Minute)
		for i := 0; i < 10; i++ {
			require.True(t, limiter.Allow("c"))
		}
		require.False(t, limiter.Allow("c"))

		clock.Advance(7 * time.Second)
		assert.True(t, limiter.Allow("c"))
		assert.False(t, limiter.Allow("c"))

		clock.Advance(time.Minute)
		assert.Equal(t, 10, limiter.Remaining("c"))
	})

	t.Run("evicts idle clients", func(t *testing.T) {
		limiter, clock := newTestLimiter(1, time.Minute)
		limiter.Allow("idle")
		clock.Advance(3 * time.Minute)
		limiter.Allow("busy")

		limiter.evict(clock.Now().Add(-2 * time.Minute))

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		assert.NotContains(t, limiter.clients, "idle")
		assert.Contains(t, limiter.clients, "busy")
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		limiter.Stop()
		limiter.Stop()
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	var rejected []string

	router := gin.New()
	router.Use(RateLimit(limiter, WithRejectHook("upload", func(scope string) {
		rejected = append(rejected, scope)
	})))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := do("10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	blocked := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "30", blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), dto.ErrCodeRateLimited)
	assert.Equal(t, []string{"upload"}, rejected)

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestClientKey(t *testing.T) {
	router := gin.New()
	router.GET("/anon", func(c *gin.Context) { c.String(http.StatusOK, ClientKey(c)) })
	router.GET("/user", func(c *gin.Context) {
		c.Set(JWTUserIDKey, "42")
		c.String(http.StatusOK, ClientKey(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/anon", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "ip:192.0.2.7", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Equal(t, "user:42", rec.Body.String())
}
