package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpen_Success(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := Open(context.Background(), Options{Addr: s.Addr(), DB: 2})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	if v, err := c.Get(ctx, "k").Result(); err != nil || v != "v" {
		t.Fatalf("GET = %q, %v", v, err)
	}
}

func TestOpen_Failure(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	if _, err := Open(context.Background(), Options{Addr: addr, PingTimeout: 500 * time.Millisecond}); err == nil {
		t.Fatal("expected error, got nil")
	}
}
