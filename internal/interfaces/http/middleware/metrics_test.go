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
)

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveRequest(method, route string, status int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{method: method, route: route, status: status})
}

func TestHTTPMetrics(t *testing.T) {
	first, second := &recordingObserver{}, &recordingObserver{}

	router := gin.New()
	router.Use(HTTPMetrics(first, nil, second))
	router.GET("/api/events/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/events", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/9", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/events", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	want := []observation{
		{method: http.MethodGet, route: "/api/events/:id", status: http.StatusOK},
		{method: http.MethodPost, route: "/api/events", status: http.StatusBadRequest},
		{method: http.MethodGet, route: "unknown", status: http.StatusNotFound},
	}
	require.Len(t, first.seen, 3)
	assert.Equal(t, want, first.seen)
	assert.Equal(t, want, second.seen)
}

func TestHTTPMetrics_NoObservers(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
