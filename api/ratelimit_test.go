package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

func limitedRouter(rl *IPRateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(rl.Middleware())
	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func doRequest(r *mux.Router, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(rate.Limit(1), 3))
	for i := 0; i < 3; i++ {
		if rec := doRequest(r, "10.0.0.1:1234", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestRateLimiterBlocksExcess(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(rate.Limit(0.001), 1))
	if rec := doRequest(r, "10.0.0.1:1234", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	rec := doRequest(r, "10.0.0.1:1234", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(rate.Limit(0.001), 1))
	if rec := doRequest(r, "10.0.0.1:1234", nil); rec.Code != http.StatusOK {
		t.Fatalf("client A: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(r, "10.0.0.1:1234", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("client A: expected 429, got %d", rec.Code)
	}
	if rec := doRequest(r, "10.0.0.2:1234", nil); rec.Code != http.StatusOK {
		t.Fatalf("client B must have its own bucket, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.9:5555", nil, "192.168.1.9"},
		{"x-forwarded-for single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"x-forwarded-for chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.8"}, "203.0.113.8"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tc.want {
				t.Fatalf("clientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
