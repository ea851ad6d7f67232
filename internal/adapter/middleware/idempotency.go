package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"

	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for Ax-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
)

// ---- Data types ----
type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// Idempotency records the first response per (method, route, actor, request id)
// and replays it for retries carrying the same body. Only 2xx and 4xx responses
// are recorded; a 5xx releases the key so the client may retry.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			if !isMutating(method) {
				return next(c)
			}

			rawID := req.Header.Get(HeaderRequestID)
			if strings.TrimSpace(rawID) == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing " + HeaderRequestID})
			}
			reqID, ok := normalizeReqID(rawID)
			if !ok {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderRequestID + " format"})
			}

			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			now := nowUTC()
			if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": HeaderRequestAt + " too skewed"})
			}

			actorID := strings.TrimSpace(req.Header.Get(HeaderActorID))
			if actorID == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing " + HeaderActorID})
			}
			if !validActorID(actorID) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderActorID})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(method, c.Path(), actorID, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			entry := idempEntry{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}
			ok, err = provisionalSet(ctx, rdb, key, entry)
			if err != nil {
				slog.Warn("idempotency: store unavailable", "key", key, "err", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !ok {
				// Key exists: body must match, and we may be able to replay
				cur, errLoad := loadEntry(ctx, rdb, key)
				if errLoad != nil && !errors.Is(errLoad, redis.Nil) {
					slog.Warn("idempotency: load entry failed", "key", key, "err", errLoad)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					c.Response().Header().Set("Ax-Idempotent-Replay", "true")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(context.Background(), key).Err(); err != nil {
					slog.Warn("idempotency: release key failed", "key", key, "err", err)
				}
				return nil
			}
			final := idempEntry{
				InProgress:  false,
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   reqID,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}
			if err := saveFinal(context.Background(), rdb, key, final, ttl); err != nil {
				slog.Warn("idempotency: save final failed", "key", key, "err", err)
			}
			return nil
		}
	}
}
