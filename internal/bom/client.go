package bom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ozsensors/bom-bridge/internal/models"
	"github.com/ozsensors/bom-bridge/internal/observability"
)

// Getter fetches one bureau endpoint for a geohash. Implemented by Client;
// the collector accepts the interface so tests can substitute failures.
type Getter interface {
	Get(ctx context.Context, endpoint Endpoint, geohash string) (models.Payload, error)
}

// StatusError reports a non-200 response. The collector treats status errors
// differently from transport errors: they are logged and retried immediately,
// with no backoff sleep.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bom: %s returned status %d", e.URL, e.Code)
}

// Client issues GETs against the bureau API. A single Client (and its
// underlying connection pool) is shared across all fetches of a collector's
// update cycle.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient returns a Client for the given API root. Empty baseURL or
// userAgent fall back to the bureau defaults; timeout <= 0 means no
// per-request timeout beyond the caller's context.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Get fetches the endpoint for the geohash and decodes the JSON body.
// Non-200 responses return *StatusError. Transport and decode failures return
// wrapped errors.
func (c *Client) Get(ctx context.Context, endpoint Endpoint, geohash string) (models.Payload, error) {
	url := c.baseURL + endpoint.Path(geohash)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.BureauAPICallsTotal.WithLabelValues(endpoint.String(), "error").Inc()
		observability.BureauAPIDuration.WithLabelValues(endpoint.String(), "error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.BureauAPICallsTotal.WithLabelValues(endpoint.String(), status).Inc()
	observability.BureauAPIDuration.WithLabelValues(endpoint.String(), status).Observe(duration)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var payload models.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return payload, nil
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
