package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitByIP_EnforcesLimit(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 3})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:9000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("request %d failed with status %d, expected 200", i+1, recorder.Code)
		}
	}

	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:9000"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after limit, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if body := recorder.Body.String(); body != `{"error":"rate_limit_exceeded","message":"Too many requests"}` {
		t.Errorf("unexpected response body: %s", body)
	}
}

func TestRateLimitByIP_IsolatesClientBuckets(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First client exhausts its bucket
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = "203.0.113.10:9000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Errorf("client A request %d failed", i+1)
		}
	}

	// A different client is unaffected
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "203.0.113.11:9000"
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("client B should have an independent bucket, got status %d", recorder.Code)
	}
}

func TestDefaultLimits(t *testing.T) {
	if got := DefaultAuthRateLimit().RequestsPerMinute; got != 5 {
		t.Errorf("auth limit: got %d, want 5", got)
	}
	if got := DefaultAPIRateLimit().RequestsPerMinute; got != 60 {
		t.Errorf("api limit: got %d, want 60", got)
	}
}
