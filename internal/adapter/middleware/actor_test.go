package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireActor(t *testing.T) {
	e := echo.New()
	e.Use(RequireActor())
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, ActorFrom(c))
	}
	e.GET("/loans", handler)
	e.POST("/loans", handler)

	tests := []struct {
		name     string
		method   string
		actor    string
		wantCode int
		wantBody string
	}{
		{name: "read without actor", method: http.MethodGet, wantCode: http.StatusOK},
		{name: "read with actor", method: http.MethodGet, actor: "user_ops", wantCode: http.StatusOK, wantBody: "user_ops"},
		{name: "write without actor", method: http.MethodPost, wantCode: http.StatusUnauthorized},
		{name: "write with malformed actor", method: http.MethodPost, actor: "two words", wantCode: http.StatusBadRequest},
		{name: "write with actor", method: http.MethodPost, actor: "auth0|5f1c", wantCode: http.StatusOK, wantBody: "auth0|5f1c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := map[string]string{}
			if tt.actor != "" {
				hdr[HeaderActorID] = tt.actor
			}
			rec := doReq(t, e, tt.method, "/loans", nil, hdr)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Fatalf("actor = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestActorFrom_HeaderFallback(t *testing.T) {
	e := echo.New()
	e.POST("/x", func(c echo.Context) error { return c.String(http.StatusOK, ActorFrom(c)) })

	rec := doReq(t, e, http.MethodPost, "/x", nil, map[string]string{HeaderActorID: " user_ops "})
	if rec.Body.String() != "user_ops" {
		t.Fatalf("actor = %q", rec.Body.String())
	}
	rec = doReq(t, e, http.MethodPost, "/x", nil, map[string]string{HeaderActorID: "bad actor"})
	if rec.Body.String() != "" {
		t.Fatalf("malformed header must not be trusted, got %q", rec.Body.String())
	}
}
