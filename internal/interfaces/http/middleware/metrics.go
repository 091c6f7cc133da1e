// Package middleware provides the gin middleware of the UEvent API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver receives one observation per finished request. The
// Prometheus registry and the OTLP meter both implement it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// HTTPMetrics reports method, route pattern, status and latency of every
// request to each observer. Nil observers are skipped.
func HTTPMetrics(observers ...RequestObserver) gin.HandlerFunc {
	active := make([]RequestObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			active = append(active, o)
		}
	}
	if len(active) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		route := getRoutePattern(c)
		for _, o := range active {
			o.ObserveRequest(c.Request.Method, route, c.Writer.Status(), duration)
		}
	}
}

// getRoutePattern returns the route pattern (e.g. "/api/events/:id")
// instead of the actual path to keep label cardinality bounded.
func getRoutePattern(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unknown"
	}
	return route
}

// HTTPMetricsStatusGroup groups status codes by class (2xx, 4xx, 5xx).
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other"
	}
}
