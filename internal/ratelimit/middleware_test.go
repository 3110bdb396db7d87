package ratelimit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(store *Store) *fiber.App {
	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Use("/api", New(store))
	app.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"pong": true})
	})
	return app
}

func TestMiddlewareSetsRateLimitHeaders(t *testing.T) {
	app := newTestApp(NewStore(2, time.Minute))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if got := resp.Header.Get("X-RateLimit-Limit"); got != "2" {
		t.Fatalf("expected limit header 2, got %q", got)
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "1" {
		t.Fatalf("expected remaining header 1, got %q", got)
	}
	if got := resp.Header.Get("X-RateLimit-Reset"); got == "" {
		t.Fatalf("expected reset header to be set")
	}
}

func TestMiddlewareRejectsOverQuota(t *testing.T) {
	app := newTestApp(NewStore(2, time.Minute))

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Retry-After"); got == "" {
		t.Fatalf("expected Retry-After header on rejection")
	}

	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid rejection body: %v", err)
	}
	if payload.Error == "" {
		t.Fatalf("expected error message in rejection body")
	}
	if payload.RetryAfter <= 0 || payload.RetryAfter > 60 {
		t.Fatalf("expected retryAfter within (0, 60], got %d", payload.RetryAfter)
	}
}

func TestMiddlewareSkipsUnscopedPaths(t *testing.T) {
	app := newTestApp(NewStore(1, time.Minute))

	// The quota is one request, but /health sits outside the limited prefix.
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("health request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}
}
