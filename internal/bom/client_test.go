package bom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/r3gx2f/observations" {
			t.Errorf("path = %s, want /r3gx2f/observations", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent/0.1" {
			t.Errorf("User-Agent = %q, want test-agent/0.1", ua)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("Accept = %q", accept)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"temp": 20.5, "humidity": 50}, "metadata": {"issue_time": "2024-01-01T00:00:00Z"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-agent/0.1", 2*time.Second)
	payload, err := c.Get(context.Background(), Observations, "r3gx2f")
	if err != nil {
		t.Fatalf("Get() err = %v", err)
	}
	if payload.Data()["temp"] != 20.5 {
		t.Errorf("temp = %v, want 20.5", payload.Data()["temp"])
	}
}

func TestClient_Get_EndpointPaths(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 2*time.Second)
	tests := []struct {
		endpoint Endpoint
		want     string
	}{
		{Locations, "/r3gx2f"},
		{Observations, "/r3gx2f/observations"},
		{DailyForecasts, "/r3gx2f/forecasts/daily"},
		{HourlyForecasts, "/r3gx2f/forecasts/hourly"},
		{Warnings, "/r3gx2f/warnings"},
	}
	for _, tc := range tests {
		if _, err := c.Get(context.Background(), tc.endpoint, "r3gx2f"); err != nil {
			t.Fatalf("%s: Get() err = %v", tc.endpoint, err)
		}
		if gotPath != tc.want {
			t.Errorf("%s: path = %q, want %q", tc.endpoint, gotPath, tc.want)
		}
	}
}

func TestClient_Get_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 2*time.Second)
	_, err := c.Get(context.Background(), Observations, "zzzzzz")
	if err == nil {
		t.Fatal("Get() err = nil, want StatusError")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Get() err = %T, want *StatusError", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", statusErr.Code)
	}
	if !IsStatusError(err) {
		t.Error("IsStatusError() = false, want true")
	}
}

func TestClient_Get_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": `))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 2*time.Second)
	_, err := c.Get(context.Background(), Observations, "r3gx2f")
	if err == nil {
		t.Fatal("Get() err = nil, want parse error")
	}
	if IsStatusError(err) {
		t.Error("IsStatusError() = true for decode failure, want false")
	}
	if got := CategorizeError(err); got != ErrorCategoryParsing {
		t.Errorf("CategorizeError() = %q, want parsing", got)
	}
}

func TestClient_Get_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(server.URL, "", 2*time.Second)
	_, err := c.Get(ctx, Observations, "r3gx2f")
	if err == nil {
		t.Fatal("Get() err = nil with expired context, want error")
	}
	if IsStatusError(err) {
		t.Error("IsStatusError() = true for timeout, want false")
	}
}

func TestClient_Get_ConnectionRefused(t *testing.T) {
	// Closed server: transport error, not a StatusError.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(server.URL, "", time.Second)
	_, err := c.Get(context.Background(), Warnings, "r3gx2f")
	if err == nil {
		t.Fatal("Get() err = nil against closed server, want error")
	}
	if IsStatusError(err) {
		t.Error("IsStatusError() = true for connection failure, want false")
	}
	if got := CategorizeError(err); got != ErrorCategoryNetwork {
		t.Errorf("CategorizeError() = %q, want network", got)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", 0)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want default", c.baseURL)
	}
	if c.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want default", c.userAgent)
	}

	c = NewClient("http://localhost:9999/v1/locations", "", 0)
	if c.baseURL != "http://localhost:9999/v1/locations/" {
		t.Errorf("baseURL = %q, want trailing slash appended", c.baseURL)
	}
}
