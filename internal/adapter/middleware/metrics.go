package middleware

import (
	"time"

	"loan-pipeline/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

// RequestMetrics observes request latency labelled by route template.
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(c.Request().Method, route, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
