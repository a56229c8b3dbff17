package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EasterCompany/dex-meetup-service/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMatchesPattern(t *testing.T) {
	cases := []struct {
		id, pattern string
		want        bool
	}{
		{"abc-123", "*", true},
		{"abc-123", "abc*", true},
		{"abc-123", "*123", true},
		{"abc-123", "ab?-123", true},
		{"abc-123", "xyz*", false},
		{"abc-123", "abc", false},
		{"a.c", "a.c", true},
		{"abc", "a.c", false},
	}
	for _, c := range cases {
		if got := matchesPattern(c.id, c.pattern); got != c.want {
			t.Errorf("matchesPattern(%q, %q) = %v, want %v", c.id, c.pattern, got, c.want)
		}
	}
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.Default()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	a, err := newApp(context.Background(), cfg, rdb)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	return a.routes()
}

func TestRoutes_GeminiWithoutKey(t *testing.T) {
	h := newTestApp(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/gemini", strings.NewReader(`{"count":2}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Missing GOOGLE_API_KEY or GEMINI_API_KEY") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestRoutes_PublicAndSignedIn(t *testing.T) {
	h := newTestApp(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/posts: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/joy", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/joy without session: expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places?lat=1&lng=2", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /api/places without key: expected 503, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/gemini", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", rec.Code)
	}
}
