package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/locations", "/locations"},
		{"/locations/", "/locations"},
		{"/locations/r3gx2f", "/locations/{geohash}"},
		{"/locations/r3gx2f/observations", "/locations/{geohash}/observations"},
		{"/locations/r3gx2f/forecasts/daily", "/locations/{geohash}/forecasts/daily"},
		{"/locations/r3gx2f/forecasts/hourly", "/locations/{geohash}/forecasts/hourly"},
		{"/locations/r3gx2f/warnings", "/locations/{geohash}/warnings"},
		{"/unknown", "/unknown"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if got := getRoute(req); got != tc.want {
			t.Errorf("getRoute(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestStatusCodeString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{404, "4xx"},
		{429, "4xx"},
		{503, "5xx"},
	}
	for _, tc := range tests {
		if got := statusCodeString(tc.code); got != tc.want {
			t.Errorf("statusCodeString(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var hadDeadline bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
	})
	handler := TimeoutMiddleware(100 * time.Millisecond)(inner)

	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !hadDeadline {
		t.Error("request context has no deadline inside TimeoutMiddleware")
	}
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := RateLimitMiddleware(nil)(inner)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/locations", nil))
	if !called {
		t.Error("nil limiter should pass requests through")
	}
}
