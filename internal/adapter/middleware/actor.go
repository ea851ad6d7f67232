package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderActorID carries the identity-provider subject of the operator.
// It is trusted as given and only recorded in audit entries.
const HeaderActorID = "Ax-Actor-Id"

const actorKey = "pipeline.actor"

// RequireActor rejects mutating requests without a well-formed Ax-Actor-Id
// and stores the actor on the context for handlers.
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			switch {
			case id != "" && validActorID(id):
				c.Set(actorKey, id)
			case id != "":
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			case isMutating(c.Request().Method):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by RequireActor, falling back to a valid
// Ax-Actor-Id header when the middleware is not installed.
func ActorFrom(c echo.Context) string {
	if v, ok := c.Get(actorKey).(string); ok {
		return v
	}
	id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
	if validActorID(id) {
		return id
	}
	return ""
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
