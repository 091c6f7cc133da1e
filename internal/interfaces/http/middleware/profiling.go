package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/t1tandr/uevent/internal/infrastructure/telemetry"
)

// Profiling tags the CPU work of each request with Pyroscope labels
// (method, route pattern and the resource segment of the route) so profiles
// can be filtered per endpoint.
func Profiling(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := map[string]string{telemetry.ProfilingLabelMethod: c.Request.Method}
	route := c.FullPath()
	if route != "" {
		labels[telemetry.ProfilingLabelRoute] = route
	}
	if controller := controllerFromRoute(route); controller != "" {
		labels[telemetry.ProfilingLabelController] = controller
	}
	return labels
}

// controllerFromRoute returns the first static segment after /api,
// "/api/events/:id/attendees" -> "events".
func controllerFromRoute(route string) string {
	for _, seg := range strings.Split(strings.TrimPrefix(route, "/api"), "/") {
		if seg != "" && !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "*") {
			return seg
		}
	}
	return ""
}
