package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check is one dependency probed by the health endpoint.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Handler struct{ checks []Check }

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks} }

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Fn(ctx); err != nil {
			deps[chk.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status":       status,
		"time":         time.Now().UTC().Format(time.RFC3339Nano),
		"dependencies": deps,
	})
}
